package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
)

// UserDTO is the transport shape of a profile.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	DJName      *string        `json:"dj_name,omitempty"`
	BrandName   *string        `json:"brand_name,omitempty"`
	DisplayName string         `json:"display_name"`
	Role        enums.UserRole `json:"role"`
	Credits     int            `json:"credits"`
	CreatedAt   time.Time      `json:"created_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DJName:      u.DJName,
		BrandName:   u.BrandName,
		DisplayName: DisplayName(*u),
		Role:        u.Role,
		Credits:     u.Credits,
		CreatedAt:   u.CreatedAt,
	}
}

// DisplayName resolves the public name: dj name, then brand name, then the
// trimmed full name, then email. The first non-empty value wins.
func DisplayName(u models.User) string {
	if name := trimmed(u.DJName); name != "" {
		return name
	}
	if name := trimmed(u.BrandName); name != "" {
		return name
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
