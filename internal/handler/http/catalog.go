package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shelfable/bookstore/internal/domain"
	"github.com/shelfable/bookstore/internal/repository"
	"github.com/shelfable/bookstore/pkg/validator"
)

// CatalogHandler handles HTTP requests for books, authors, publishers, and
// categories. Catalog entities are plain CRUD, so the handler talks to the
// repositories directly.
type CatalogHandler struct {
	books      repository.BookRepository
	authors    repository.AuthorRepository
	publishers repository.PublisherRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(
	books repository.BookRepository,
	authors repository.AuthorRepository,
	publishers repository.PublisherRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		books:      books,
		authors:    authors,
		publishers: publishers,
		categories: categories,
		logger:     logger,
	}
}

// --- Request DTOs ---

// CreateBookRequest is the JSON request body for creating a book.
type CreateBookRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=500"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Rating      float64    `json:"rating" validate:"gte=0,lte=5"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    string     `json:"author_id" validate:"required"`
	CategoryID  string     `json:"category_id" validate:"required"`
	PublisherID string     `json:"publisher_id" validate:"required"`
}

// UpdateBookRequest is the JSON request body for updating a book.
type UpdateBookRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Rating      *float64   `json:"rating" validate:"omitempty,gte=0,lte=5"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    *string    `json:"author_id"`
	CategoryID  *string    `json:"category_id"`
	PublisherID *string    `json:"publisher_id"`
}

// NameRequest is the JSON request body for entities that only carry a name,
// such as authors and publishers.
type NameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// CreateCategoryRequest is the JSON request body for creating a category.
type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	ParentID *string `json:"parent_id"`
}

// UpdateCategoryRequest is the JSON request body for updating a category.
type UpdateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	ParentID *string `json:"parent_id"`
}

// --- Books ---

// ListBooks handles GET /api/v1/books
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: books})
}

// GetBook handles GET /api/v1/books/{id}
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: book})
}

// CreateBook handles POST /api/v1/books
func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Rating:      req.Rating,
		PublishedAt: req.PublishedAt,
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		PublisherID: req.PublisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.books.Create(r.Context(), book); err != nil {
		writeAppError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	writeJSON(w, http.StatusCreated, response{Data: book})
}

// UpdateBook handles PUT /api/v1/books/{id}
func (h *CatalogHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	book, err := h.books.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.PublishedAt != nil {
		book.PublishedAt = req.PublishedAt
	}
	if req.AuthorID != nil {
		book.AuthorID = *req.AuthorID
	}
	if req.CategoryID != nil {
		book.CategoryID = *req.CategoryID
	}
	if req.PublisherID != nil {
		book.PublisherID = *req.PublisherID
	}

	if err := h.books.Update(r.Context(), book); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: book})
}

// DeleteBook handles DELETE /api/v1/books/{id}
func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.books.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// --- Authors ---

// ListAuthors handles GET /api/v1/authors
func (h *CatalogHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.authors.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: authors})
}

// GetAuthor handles GET /api/v1/authors/{id}
func (h *CatalogHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := h.authors.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: author})
}

// ListAuthorBooks handles GET /api/v1/authors/{id}/books
func (h *CatalogHandler) ListAuthorBooks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.authors.GetByID(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	books, err := h.books.ListByAuthor(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: books})
}

// CreateAuthor handles POST /api/v1/authors
func (h *CatalogHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	author := &domain.Author{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.authors.Create(r.Context(), author); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: author})
}

// UpdateAuthor handles PUT /api/v1/authors/{id}
func (h *CatalogHandler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	author, err := h.authors.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	author.Name = req.Name

	if err := h.authors.Update(r.Context(), author); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: author})
}

// DeleteAuthor handles DELETE /api/v1/authors/{id}
func (h *CatalogHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.authors.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// --- Publishers ---

// ListPublishers handles GET /api/v1/publishers
func (h *CatalogHandler) ListPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: publishers})
}

// GetPublisher handles GET /api/v1/publishers/{id}
func (h *CatalogHandler) GetPublisher(w http.ResponseWriter, r *http.Request) {
	publisher, err := h.publishers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: publisher})
}

// CreatePublisher handles POST /api/v1/publishers
func (h *CatalogHandler) CreatePublisher(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	publisher := &domain.Publisher{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.publishers.Create(r.Context(), publisher); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: publisher})
}

// UpdatePublisher handles PUT /api/v1/publishers/{id}
func (h *CatalogHandler) UpdatePublisher(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	publisher, err := h.publishers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	publisher.Name = req.Name

	if err := h.publishers.Update(r.Context(), publisher); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: publisher})
}

// DeletePublisher handles DELETE /api/v1/publishers/{id}
func (h *CatalogHandler) DeletePublisher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.publishers.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// --- Categories ---

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: categories})
}

// CategoryTree handles GET /api/v1/categories/tree
//
// Categories are stored flat with parent references; the response nests them.
func (h *CatalogHandler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: domain.BuildCategoryTree(categories)})
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: category})
}

// ListCategoryBooks handles GET /api/v1/categories/{id}/books
func (h *CatalogHandler) ListCategoryBooks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.categories.GetByID(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	books, err := h.books.ListByCategory(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: books})
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      req.Name,
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.categories.Create(r.Context(), category); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: category})
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	category, err := h.categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.ParentID != nil {
		category.ParentID = req.ParentID
	}

	if err := h.categories.Update(r.Context(), category); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}
