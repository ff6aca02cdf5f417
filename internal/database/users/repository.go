// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.FindOrCreateByGoogleID(name, sub)
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/booklib/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreateByGoogleID returns the user for a Google subject identifier,
// creating the row on first login. Calling it twice with the same googleID
// always yields the same user.
func (r *Repository) FindOrCreateByGoogleID(username, googleID string) (*entities.User, error) {
	if googleID == "" {
		return nil, fmt.Errorf("google ID is required")
	}

	var user entities.User
	err := r.db.Where("google_id = ?", googleID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user by google ID: %w", err)
	}

	user = entities.User{
		Username: username,
		GoogleID: googleID,
	}
	if err := r.db.Create(&user).Error; err != nil {
		// A concurrent first login may have inserted the row between the
		// lookup and the create. The unique index rejects the duplicate,
		// so retry the lookup once.
		var existing entities.User
		if lookupErr := r.db.Where("google_id = ?", googleID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
