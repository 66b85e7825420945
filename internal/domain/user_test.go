package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func roleWithPerms(name string, perms ...string) Role {
	r := Role{Name: name}
	for _, p := range perms {
		r.Permissions = append(r.Permissions, Permission{Name: p})
	}
	return r
}

// ============================================================================
// Permission Aggregation Tests
// ============================================================================

func TestEffectivePermissions_NoRoles(t *testing.T) {
	u := User{}
	assert.Empty(t, u.EffectivePermissions())
}

func TestEffectivePermissions_RolesWithoutPermissions(t *testing.T) {
	u := User{Roles: []Role{{Name: "empty"}, {Name: "also-empty"}}}
	assert.Empty(t, u.EffectivePermissions())
}

func TestEffectivePermissions_SingleRole(t *testing.T) {
	u := User{Roles: []Role{roleWithPerms("librarian", "books:read", "books:write")}}
	assert.Equal(t, []string{"books:read", "books:write"}, u.EffectivePermissions())
}

func TestEffectivePermissions_UnionAcrossRoles(t *testing.T) {
	u := User{Roles: []Role{
		roleWithPerms("librarian", "books:read", "books:write"),
		roleWithPerms("auditor", "users:read"),
	}}
	assert.Equal(t, []string{"books:read", "books:write", "users:read"}, u.EffectivePermissions())
}

func TestEffectivePermissions_DeduplicatesOverlap(t *testing.T) {
	u := User{Roles: []Role{
		roleWithPerms("librarian", "books:read", "books:write"),
		roleWithPerms("reviewer", "books:read"),
	}}

	perms := u.EffectivePermissions()
	assert.Equal(t, []string{"books:read", "books:write"}, perms)

	// Counting once regardless of how many roles grant it.
	count := 0
	for _, p := range perms {
		if p == "books:read" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEffectivePermissions_OrderIndependent(t *testing.T) {
	a := User{Roles: []Role{
		roleWithPerms("r1", "z:perm", "a:perm"),
		roleWithPerms("r2", "m:perm"),
	}}
	b := User{Roles: []Role{
		roleWithPerms("r2", "m:perm"),
		roleWithPerms("r1", "a:perm", "z:perm"),
	}}

	assert.Equal(t, a.EffectivePermissions(), b.EffectivePermissions())
	assert.Equal(t, []string{"a:perm", "m:perm", "z:perm"}, a.EffectivePermissions())
}

// ============================================================================
// User Struct Tests
// ============================================================================

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&User{LastName: "Lovelace"}).FullName())
	assert.Empty(t, (&User{}).FullName())
}

func TestUser_RoleNames(t *testing.T) {
	u := User{Roles: []Role{{Name: "admin"}, {Name: "librarian"}}}
	assert.Equal(t, []string{"admin", "librarian"}, u.RoleNames())
}

func TestUser_PasswordHashExcludedFromJSON(t *testing.T) {
	u := User{PasswordHash: "secret"}
	assert.Equal(t, "secret", u.PasswordHash)
	// The json:"-" tag ensures PasswordHash is excluded from serialization.
}

func TestTokenPair_Fields(t *testing.T) {
	tp := TokenPair{AccessToken: "access-123", RefreshToken: "refresh-456", TokenType: "bearer"}
	assert.Equal(t, "access-123", tp.AccessToken)
	assert.Equal(t, "refresh-456", tp.RefreshToken)
	assert.Equal(t, "bearer", tp.TokenType)
}
