package auth

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth"

	"github.com/rndosd/finclass/src/models"
)

// Claims is the authenticated caller context every operation starts from:
// who is acting, under which display name, in which classroom, and with
// which role.
type Claims struct {
	UserID  string
	Name    string
	ClassID string
	Role    models.Role
}

// Capability names one privileged action. All role checks go through
// Can so authorization rules live in exactly one place.
type Capability string

const (
	CapTrade          Capability = "trade"
	CapManageSettings Capability = "manage_settings"
	CapManageRoster   Capability = "manage_roster"
	CapManageGlobal   Capability = "manage_global"
)

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleStudent: {
		CapTrade: true,
	},
	models.RoleTeacher: {
		CapTrade:          true,
		CapManageSettings: true,
		CapManageRoster:   true,
	},
	models.RoleAdmin: {
		CapTrade:          true,
		CapManageSettings: true,
		CapManageRoster:   true,
		CapManageGlobal:   true,
	},
}

func (c *Claims) Can(cap Capability) bool {
	if c == nil {
		return false
	}
	return roleCapabilities[c.Role][cap]
}

func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// FromJWTContext builds Claims from the token jwtauth's Verifier stored in
// the request context.
func FromJWTContext(ctx context.Context) (*Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	classID, _ := claims["classId"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || classID == "" {
		return nil, fmt.Errorf("token is missing sub or classId claims")
	}
	if role == "" {
		role = string(models.RoleStudent)
	}
	return &Claims{
		UserID:  userID,
		Name:    name,
		ClassID: classID,
		Role:    models.Role(role),
	}, nil
}

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
