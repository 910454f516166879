package services

// Authorize decides whether principal may mutate a resource owned by ownerID.
// Anonymous principals are always denied. The two deny reasons stay distinct
// so the transport can choose between a 401 and a 403 response.
func Authorize(principal Principal, ownerID uint) error {
	if !principal.Authenticated() {
		return ErrNotAuthenticated
	}
	if principal.ID != ownerID {
		return ErrPermissionDenied
	}
	return nil
}
