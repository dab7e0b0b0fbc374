package usecase

import "github.com/xavierca1/ligue-crm/internal/entity"

// Authorize lets admins act on any lead and sales users only on leads
// assigned to them.
func Authorize(caller *entity.User, lead *entity.Lead) error {
	if caller == nil {
		return unauthorizedError("Unauthorized")
	}
	if caller.Role.IsAdmin() {
		return nil
	}
	if lead != nil && caller.Role.IsSales() && lead.IsAssignedTo(caller.ID) {
		return nil
	}
	return forbiddenError()
}

// RequireAdmin guards admin-only operations.
func RequireAdmin(caller *entity.User) error {
	if caller == nil {
		return unauthorizedError("Unauthorized")
	}
	if !caller.Role.IsAdmin() {
		return forbiddenError()
	}
	return nil
}
