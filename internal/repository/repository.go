package repository

import (
	"context"
	"time"

	"github.com/shelfable/bookstore/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
// Every read returns the user aggregate fully populated: roles with their
// permissions attached, never a bare user row.
type UserRepository interface {
	// Create inserts a new user and assigns the given roles atomically.
	Create(ctx context.Context, user *domain.User, roleIDs []string) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their unique username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns all users.
	List(ctx context.Context) ([]domain.User, error)

	// Update modifies a user's profile fields.
	Update(ctx context.Context, user *domain.User) error

	// UpdatePassword replaces a user's password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetRoles replaces the user's role assignments atomically.
	SetRoles(ctx context.Context, userID string, roleIDs []string) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines the interface for role persistence operations.
// Reads return roles with their permissions attached.
type RoleRepository interface {
	// Create inserts a new role and attaches the given permissions atomically.
	Create(ctx context.Context, role *domain.Role, permissionIDs []string) error

	// GetByID retrieves a role by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Role, error)

	// GetByName retrieves a role by its unique name.
	GetByName(ctx context.Context, name string) (*domain.Role, error)

	// List returns all roles.
	List(ctx context.Context) ([]domain.Role, error)

	// Update modifies a role's name and description.
	Update(ctx context.Context, role *domain.Role) error

	// SetPermissions replaces the role's permission attachments atomically.
	SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error

	// Delete removes a role from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// PermissionRepository defines the interface for permission persistence operations.
type PermissionRepository interface {
	// Create inserts a new permission into the store.
	Create(ctx context.Context, permission *domain.Permission) error

	// GetByID retrieves a permission by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Permission, error)

	// List returns all permissions.
	List(ctx context.Context) ([]domain.Permission, error)

	// Update modifies an existing permission.
	Update(ctx context.Context, permission *domain.Permission) error

	// Delete removes a permission from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// List returns all books.
	List(ctx context.Context) ([]domain.Book, error)

	// ListByAuthor returns all books written by the given author.
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Book, error)

	// ListByCategory returns all books filed under the given category.
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Book, error)

	// Update modifies an existing book.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// AuthorRepository defines the interface for author persistence operations.
type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id string) (*domain.Author, error)
	List(ctx context.Context) ([]domain.Author, error)
	Update(ctx context.Context, author *domain.Author) error
	Delete(ctx context.Context, id string) error
}

// PublisherRepository defines the interface for publisher persistence operations.
type PublisherRepository interface {
	Create(ctx context.Context, publisher *domain.Publisher) error
	GetByID(ctx context.Context, id string) (*domain.Publisher, error)
	List(ctx context.Context) ([]domain.Publisher, error)
	Update(ctx context.Context, publisher *domain.Publisher) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns all categories as a flat slice; callers build the tree.
	List(ctx context.Context) ([]domain.Category, error)

	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository defines the interface for the server-side refresh-token
// registry. Entries are keyed by the refresh token's jti and expire with the
// token, so abandoned sessions clean themselves up.
type SessionRepository interface {
	// Save registers a refresh token's jti for the given user with a TTL.
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error

	// Get returns the user ID registered for the jti. Returns
	// errors.ErrNotFound when the entry is missing or expired.
	Get(ctx context.Context, jti string) (string, error)

	// Delete removes the registry entry for the jti. Deleting a missing
	// entry is not an error.
	Delete(ctx context.Context, jti string) error
}
