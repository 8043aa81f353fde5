package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
)

// RoleResolver answers the auth middleware's role lookups from the users
// table, so a role change takes effect on the next request.
type RoleResolver struct {
	repo Repository
}

func NewRoleResolver(repo Repository) *RoleResolver {
	return &RoleResolver{repo: repo}
}

// RoleOf returns gorm.ErrRecordNotFound unchanged when the user is missing.
func (r *RoleResolver) RoleOf(ctx context.Context, userID uuid.UUID) (enums.UserRole, error) {
	user, err := r.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.Role.IsValid() {
		return "", fmt.Errorf("user %s has unknown role %q", userID, user.Role)
	}
	return user.Role, nil
}
