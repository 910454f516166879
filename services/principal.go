package services

// Principal identifies the acting user of a request. The zero value is the
// anonymous principal. It is threaded explicitly through every service call;
// nothing in this package reads ambient request state.
type Principal struct {
	ID       uint
	Username string
}

// Anonymous is the unauthenticated principal.
var Anonymous = Principal{}

// Authenticated reports whether the principal is a signed-in user.
func (p Principal) Authenticated() bool {
	return p.ID != 0
}
