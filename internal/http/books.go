package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklib/internal/auth"
	"github.com/mrlokans/booklib/internal/database/books"
	"github.com/mrlokans/booklib/internal/entities"
)

// dateReadLayout is the calendar date format of the date_read form field.
const dateReadLayout = "2006-01-02"

// BookStore defines the database operations the controller needs.
type BookStore interface {
	ListForUser(userID uint, sort books.SortKey) ([]entities.Book, error)
	GetForUser(userID, bookID uint) (*entities.Book, error)
	Insert(userID uint, fields books.BookFields) (*entities.Book, error)
	Update(userID, bookID uint, fields books.BookFields) error
	Delete(userID, bookID uint) error
}

// CoverFetcher resolves a cover image URL for an ISBN, returning "" when no
// cover is available.
type CoverFetcher interface {
	FetchCoverURL(ctx context.Context, isbn string) string
}

// BooksController renders the book list, detail, and form pages and handles
// the add/edit/delete submissions. All operations are scoped to the
// authenticated user; a book owned by someone else behaves exactly like a
// missing one.
type BooksController struct {
	store  BookStore
	covers CoverFetcher
}

// NewBooksController creates a new books controller.
func NewBooksController(store BookStore, covers CoverFetcher) *BooksController {
	return &BooksController{
		store:  store,
		covers: covers,
	}
}

// ListPage renders the book grid for a sort key. Bound to /home, /title,
// /rating, and /recency.
func (bc *BooksController) ListPage(sort books.SortKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)

		userBooks, err := bc.store.ListForUser(userID, sort)
		if err != nil {
			// Rendering instead of redirecting: "/" bounces authenticated
			// users back here, which would loop while the database is down.
			log.Printf("Failed to list books for user %d: %v", userID, err)
			c.HTML(http.StatusInternalServerError, "error", gin.H{
				"Username": auth.GetUsername(c),
			})
			return
		}

		c.HTML(http.StatusOK, "index", gin.H{
			"Books":      userBooks,
			"TotalBooks": len(userBooks),
			"Username":   auth.GetUsername(c),
			"Sort":       string(sort),
		})
	}
}

// BookPage renders the detail view for a single owned book.
func (bc *BooksController) BookPage(c *gin.Context) {
	userID := auth.GetUserID(c)

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetForUser(userID, bookID)
	if err != nil {
		if !errors.Is(err, books.ErrNotFound) {
			log.Printf("Failed to load book %d for user %d: %v", bookID, userID, err)
		}
		c.Redirect(http.StatusFound, "/home")
		return
	}

	c.HTML(http.StatusOK, "book", gin.H{
		"Book":     book,
		"Username": auth.GetUsername(c),
	})
}

// AddBookPage renders the add-book form.
func (bc *BooksController) AddBookPage(c *gin.Context) {
	c.HTML(http.StatusOK, "addbook", gin.H{
		"Username":  auth.GetUsername(c),
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// AddBook handles the add-book form submission. Cover lookup failure stores
// the book without a cover rather than failing the whole operation.
func (bc *BooksController) AddBook(c *gin.Context) {
	userID := auth.GetUserID(c)
	fields := extractBookFields(c)
	fields.CoverURL = bc.covers.FetchCoverURL(c.Request.Context(), fields.ISBN)

	if _, err := bc.store.Insert(userID, fields); err != nil {
		log.Printf("Failed to insert book for user %d: %v", userID, err)
	}

	c.Redirect(http.StatusFound, "/home")
}

// EditBookPage renders the edit form prefilled with the owned book's fields.
func (bc *BooksController) EditBookPage(c *gin.Context) {
	userID := auth.GetUserID(c)

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetForUser(userID, bookID)
	if err != nil {
		if !errors.Is(err, books.ErrNotFound) {
			log.Printf("Failed to load book %d for user %d: %v", bookID, userID, err)
		}
		c.Redirect(http.StatusFound, "/home")
		return
	}

	c.HTML(http.StatusOK, "editbook", gin.H{
		"Book":      book,
		"DateRead":  book.DateRead.Format(dateReadLayout),
		"Username":  auth.GetUsername(c),
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// EditBook handles the edit form submission. The cover is re-resolved when
// the ISBN changed; otherwise the stored URL is kept.
func (bc *BooksController) EditBook(c *gin.Context) {
	userID := auth.GetUserID(c)

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := bc.store.GetForUser(userID, bookID)
	if err != nil {
		if !errors.Is(err, books.ErrNotFound) {
			log.Printf("Failed to load book %d for user %d: %v", bookID, userID, err)
		}
		c.Redirect(http.StatusFound, "/home")
		return
	}

	fields := extractBookFields(c)
	if fields.ISBN == existing.ISBN {
		fields.CoverURL = existing.CoverURL
	} else {
		fields.CoverURL = bc.covers.FetchCoverURL(c.Request.Context(), fields.ISBN)
	}

	if err := bc.store.Update(userID, bookID, fields); err != nil {
		if !errors.Is(err, books.ErrNotFound) {
			log.Printf("Failed to update book %d for user %d: %v", bookID, userID, err)
		}
		c.Redirect(http.StatusFound, "/home")
		return
	}

	c.Redirect(http.StatusFound, "/book/"+strconv.FormatUint(uint64(bookID), 10))
}

// DeleteBook removes an owned book and returns to the list.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	userID := auth.GetUserID(c)

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.Delete(userID, bookID); err != nil {
		if !errors.Is(err, books.ErrNotFound) {
			log.Printf("Failed to delete book %d for user %d: %v", bookID, userID, err)
		}
	}

	c.Redirect(http.StatusFound, "/home")
}

// extractBookFields pulls the book attributes out of the submitted form.
// An unparseable date_read is stored as the zero time rather than rejecting
// the submission.
func extractBookFields(c *gin.Context) books.BookFields {
	rating, _ := strconv.Atoi(c.PostForm("rating"))

	dateRead, err := time.Parse(dateReadLayout, c.PostForm("date_read"))
	if err != nil {
		dateRead = time.Time{}
	}

	return books.BookFields{
		Title:    c.PostForm("title"),
		Author:   c.PostForm("author"),
		ISBN:     c.PostForm("isbn"),
		Review:   c.PostForm("review"),
		Rating:   rating,
		DateRead: dateRead,
	}
}
