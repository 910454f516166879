package utils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// in-memory fallback store
type resetEntry struct {
	token     string
	expiresAt time.Time
}

var (
	resetStore   = map[string]resetEntry{}
	resetStoreMu sync.Mutex
)

// NewResetToken creates an opaque token for a password reset link.
func NewResetToken() string {
	return uuid.NewString()
}

func resetKey(email string) string {
	return "reset:email:" + email
}

// SaveResetToken stores a reset token for an email with TTL. Prefer Redis; fallback to memory.
func SaveResetToken(email, token string, ttl time.Duration) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, resetKey(email), token, ttl).Err(); err == nil {
			return
		}
	}
	resetStoreMu.Lock()
	resetStore[email] = resetEntry{token: token, expiresAt: time.Now().Add(ttl)}
	resetStoreMu.Unlock()
}

// ConsumeResetToken checks a token and consumes it if valid. Prefer Redis; fallback to memory.
func ConsumeResetToken(email, token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := resetKey(email)
		if val, err := rc.GetDel(ctx, key).Result(); err == nil {
			return val == token
		}
		// Fallback to atomic Lua: GET then DEL
		script := `local v=redis.call('GET', KEYS[1]); if v then redis.call('DEL', KEYS[1]); end; return v`
		if res, err := rc.Eval(ctx, script, []string{key}).Result(); err == nil {
			if res == nil {
				return false
			}
			if s, ok := res.(string); ok {
				return s == token
			}
			return false
		}
		// On Redis error (e.g., network), fall through to memory fallback
	}
	resetStoreMu.Lock()
	defer resetStoreMu.Unlock()
	entry, ok := resetStore[email]
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		delete(resetStore, email)
		return false
	}
	if entry.token != token {
		return false
	}
	delete(resetStore, email)
	return true
}

// ResetCooldownTrySet sets a cooldown key for sending a reset mail. Returns true if set, false if cooling down.
func ResetCooldownTrySet(email string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, _ := rc.SetNX(ctx, "cooldown:reset:"+email, "1", cooldown).Result()
		return ok
	}
	key := "cooldown:reset:mem:" + email
	resetStoreMu.Lock()
	defer resetStoreMu.Unlock()
	if entry, ok := resetStore[key]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	resetStore[key] = resetEntry{token: "1", expiresAt: time.Now().Add(cooldown)}
	return true
}
