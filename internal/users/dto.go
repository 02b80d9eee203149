package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
)

// Profile is the public view of an admin. The password hash stays behind.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ProfileOf(u *models.AdminUser) *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// NewAdmin is the input to Create and EnsureAdmin. Admins start active
// unless Disabled is set.
type NewAdmin struct {
	Name         string
	Email        string
	PasswordHash string
	Disabled     bool
}

func (n NewAdmin) model() *models.AdminUser {
	return &models.AdminUser{
		Name:         strings.TrimSpace(n.Name),
		Email:        NormalizeEmail(n.Email),
		PasswordHash: n.PasswordHash,
		IsActive:     !n.Disabled,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
