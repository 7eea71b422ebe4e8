package services

import "taskmanager/backend/models"

// IsAdmin reports whether the claims carry the Admin role.
func IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Role == "Admin"
}

// CanAccessTask decides read/write/delete access to a task. Admins may
// access any task; everyone else only tasks they own. A missing identity
// or an ownerless task denies access. Callers check existence first, so a
// denial always surfaces as 403, never as 404.
func CanAccessTask(claims *Claims, task *models.Task) bool {
	if IsAdmin(claims) {
		return true
	}
	if claims == nil || claims.UserID == 0 {
		return false
	}
	return task.UserID != nil && *task.UserID == claims.UserID
}
