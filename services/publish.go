package services

import (
	"time"

	"github.com/adboardhq/adboard/models"
)

// Visible reports whether an ad is publicly listed at the given instant:
// its publish timestamp has elapsed. Future-dated ads stay hidden from
// listings until their time comes; fetching one directly by id is not gated.
func Visible(post *models.Post, now time.Time) bool {
	return !post.PublishedAt.After(now)
}
