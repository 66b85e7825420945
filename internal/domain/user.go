package domain

import (
	"sort"
	"time"
)

// User represents a registered user. Roles are always loaded together with
// the user, each with its permissions populated.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RoleNames returns the names of the user's roles in assignment order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// EffectivePermissions returns the deduplicated union of permission names
// across all of the user's roles, sorted for stable output. A user with no
// roles has no permissions.
func (u *User) EffectivePermissions() []string {
	seen := make(map[string]struct{})
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			seen[perm.Name] = struct{}{}
		}
	}

	perms := make([]string, 0, len(seen))
	for name := range seen {
		perms = append(perms, name)
	}
	sort.Strings(perms)
	return perms
}

// TokenPair holds an access and refresh token pair returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
