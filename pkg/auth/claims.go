package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// AccessTokenPayload is what the login flow knows about the admin at mint time.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   enums.AdminRole
	// JTI ties the token to its redis session; a fresh id is generated when empty.
	JTI string
}

type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Name   string          `json:"name"`
	Role   enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks. It rejects tokens whose
// subject disagrees with user_id or whose role is unknown.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil || c.Subject != c.UserID.String() {
		return errors.New("subject does not match user_id")
	}
	if !c.Role.IsValid() {
		return errors.New("unknown admin role")
	}
	if c.ID == "" {
		return errors.New("missing session id")
	}
	return nil
}
