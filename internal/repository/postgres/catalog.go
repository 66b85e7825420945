package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shelfable/bookstore/internal/domain"
	"github.com/shelfable/bookstore/pkg/database"
	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	db database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(db database.DBTX) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, description, rating, published_at, author_id, category_id, publisher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Description,
		b.Rating,
		b.PublishedAt,
		b.AuthorID,
		b.CategoryID,
		b.PublisherID,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "title", b.Title)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT id, title, description, rating, published_at, author_id, category_id, publisher_id, created_at, updated_at
		FROM books
		WHERE id = $1`

	var b domain.Book
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.Description,
		&b.Rating,
		&b.PublishedAt,
		&b.AuthorID,
		&b.CategoryID,
		&b.PublisherID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// List returns all books ordered by title.
func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	query := `
		SELECT id, title, description, rating, published_at, author_id, category_id, publisher_id, created_at, updated_at
		FROM books
		ORDER BY title`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Description,
			&b.Rating,
			&b.PublishedAt,
			&b.AuthorID,
			&b.CategoryID,
			&b.PublisherID,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

// ListByAuthor returns all books by the given author ordered by title.
func (r *BookRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Book, error) {
	return r.listWhere(ctx, "author_id", authorID)
}

// ListByCategory returns all books in the given category ordered by title.
func (r *BookRepository) ListByCategory(ctx context.Context, categoryID string) ([]domain.Book, error) {
	return r.listWhere(ctx, "category_id", categoryID)
}

func (r *BookRepository) listWhere(ctx context.Context, column, value string) ([]domain.Book, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, rating, published_at, author_id, category_id, publisher_id, created_at, updated_at
		FROM books
		WHERE %s = $1
		ORDER BY title`, column)

	rows, err := r.db.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("list books by %s: %w", column, err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Description,
			&b.Rating,
			&b.PublishedAt,
			&b.AuthorID,
			&b.CategoryID,
			&b.PublisherID,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

// Update modifies an existing book.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $1, description = $2, rating = $3, published_at = $4,
		    author_id = $5, category_id = $6, publisher_id = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.db.Exec(ctx, query,
		b.Title,
		b.Description,
		b.Rating,
		b.PublishedAt,
		b.AuthorID,
		b.CategoryID,
		b.PublisherID,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "title", b.Title)
		}
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book by its ID.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}

// --- Author Repository ---

// AuthorRepository implements repository.AuthorRepository using PostgreSQL.
type AuthorRepository struct {
	db database.DBTX
}

// NewAuthorRepository creates a new PostgreSQL-backed author repository.
func NewAuthorRepository(db database.DBTX) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// Create inserts a new author into the database.
func (r *AuthorRepository) Create(ctx context.Context, a *domain.Author) error {
	query := `
		INSERT INTO authors (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, a.ID, a.Name, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("author", "name", a.Name)
		}
		return fmt.Errorf("insert author: %w", err)
	}

	return nil
}

// GetByID retrieves an author by their ID.
func (r *AuthorRepository) GetByID(ctx context.Context, id string) (*domain.Author, error) {
	query := `SELECT id, name, created_at, updated_at FROM authors WHERE id = $1`

	var a domain.Author
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan author: %w", err)
	}

	return &a, nil
}

// List returns all authors ordered by name.
func (r *AuthorRepository) List(ctx context.Context) ([]domain.Author, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM authors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan author row: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author rows: %w", err)
	}

	if authors == nil {
		authors = []domain.Author{}
	}

	return authors, nil
}

// Update modifies an existing author.
func (r *AuthorRepository) Update(ctx context.Context, a *domain.Author) error {
	a.UpdatedAt = time.Now().UTC()

	ct, err := r.db.Exec(ctx,
		`UPDATE authors SET name = $1, updated_at = $2 WHERE id = $3`,
		a.Name, a.UpdatedAt, a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("author", "name", a.Name)
		}
		return fmt.Errorf("update author: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("author", a.ID)
	}

	return nil
}

// Delete removes an author by their ID.
func (r *AuthorRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("author", id)
	}

	return nil
}

// --- Publisher Repository ---

// PublisherRepository implements repository.PublisherRepository using PostgreSQL.
type PublisherRepository struct {
	db database.DBTX
}

// NewPublisherRepository creates a new PostgreSQL-backed publisher repository.
func NewPublisherRepository(db database.DBTX) *PublisherRepository {
	return &PublisherRepository{db: db}
}

// Create inserts a new publisher into the database.
func (r *PublisherRepository) Create(ctx context.Context, p *domain.Publisher) error {
	query := `
		INSERT INTO publishers (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("publisher", "name", p.Name)
		}
		return fmt.Errorf("insert publisher: %w", err)
	}

	return nil
}

// GetByID retrieves a publisher by its ID.
func (r *PublisherRepository) GetByID(ctx context.Context, id string) (*domain.Publisher, error) {
	query := `SELECT id, name, created_at, updated_at FROM publishers WHERE id = $1`

	var p domain.Publisher
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan publisher: %w", err)
	}

	return &p, nil
}

// List returns all publishers ordered by name.
func (r *PublisherRepository) List(ctx context.Context) ([]domain.Publisher, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM publishers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	defer rows.Close()

	var publishers []domain.Publisher
	for rows.Next() {
		var p domain.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan publisher row: %w", err)
		}
		publishers = append(publishers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publisher rows: %w", err)
	}

	if publishers == nil {
		publishers = []domain.Publisher{}
	}

	return publishers, nil
}

// Update modifies an existing publisher.
func (r *PublisherRepository) Update(ctx context.Context, p *domain.Publisher) error {
	p.UpdatedAt = time.Now().UTC()

	ct, err := r.db.Exec(ctx,
		`UPDATE publishers SET name = $1, updated_at = $2 WHERE id = $3`,
		p.Name, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update publisher: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("publisher", p.ID)
	}

	return nil
}

// Delete removes a publisher by its ID.
func (r *PublisherRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete publisher: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("publisher", id)
	}

	return nil
}

// --- Category Repository ---

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category into the database.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.ParentID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, parent_id, created_at, updated_at FROM categories WHERE id = $1`

	var c domain.Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// List returns all categories as a flat slice ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, parent_id, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now().UTC()

	ct, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $1, parent_id = $2, updated_at = $3 WHERE id = $4`,
		c.Name, c.ParentID, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	return nil
}

// Delete removes a category by its ID.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}
