// Package books provides database operations for book management.
//
// Every read, update, and delete is filtered by the owning user's ID, so a
// book that belongs to another user is indistinguishable from one that does
// not exist.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	books, err := repo.ListForUser(userID, books.SortByTitle)
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/booklib/internal/entities"
)

// SortKey selects the ordering of a book listing.
type SortKey string

const (
	SortByID       SortKey = "id"
	SortByTitle    SortKey = "title"
	SortByRating   SortKey = "rating"
	SortByDateRead SortKey = "date_read"
)

// orderClause maps a SortKey to its ORDER BY column. Unknown keys fall back
// to id so a crafted query string can never reach the SQL text.
func orderClause(sort SortKey) string {
	switch sort {
	case SortByTitle:
		return "title ASC"
	case SortByRating:
		return "rating ASC"
	case SortByDateRead:
		return "date_read ASC"
	default:
		return "id ASC"
	}
}

// BookFields carries the mutable attributes of a book for insert and update.
type BookFields struct {
	Title    string
	Author   string
	ISBN     string
	CoverURL string
	Review   string
	Rating   int
	DateRead time.Time
}

// ErrNotFound is returned when a book does not exist or is owned by a
// different user.
var ErrNotFound = errors.New("book not found")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser retrieves all books owned by a user, ordered by the sort key.
func (r *Repository) ListForUser(userID uint, sort SortKey) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("user_id = ?", userID).Order(orderClause(sort)).Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetForUser retrieves a single book owned by a user.
// Returns ErrNotFound for missing rows and rows owned by someone else.
func (r *Repository) GetForUser(userID, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND user_id = ?", bookID, userID).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// Insert creates a new book for a user and returns it with its ID populated.
func (r *Repository) Insert(userID uint, fields BookFields) (*entities.Book, error) {
	book := entities.Book{
		UserID:   userID,
		Title:    fields.Title,
		Author:   fields.Author,
		ISBN:     fields.ISBN,
		CoverURL: fields.CoverURL,
		Review:   fields.Review,
		Rating:   fields.Rating,
		DateRead: fields.DateRead,
	}
	if err := r.db.Create(&book).Error; err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return &book, nil
}

// Update rewrites the mutable fields of a book owned by a user.
// Returns ErrNotFound when no owned row matches.
func (r *Repository) Update(userID, bookID uint, fields BookFields) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND user_id = ?", bookID, userID).
		Updates(map[string]any{
			"title":     fields.Title,
			"author":    fields.Author,
			"isbn":      fields.ISBN,
			"cover_url": fields.CoverURL,
			"review":    fields.Review,
			"rating":    fields.Rating,
			"date_read": fields.DateRead,
		})
	if result.Error != nil {
		return fmt.Errorf("update book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a book owned by a user.
// Returns ErrNotFound when no owned row matches.
func (r *Repository) Delete(userID, bookID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", bookID, userID).Delete(&entities.Book{})
	if result.Error != nil {
		return fmt.Errorf("delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
