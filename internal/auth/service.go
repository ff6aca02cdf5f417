package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/booklib/internal/entities"
)

// OAuthProvider abstracts the external identity provider so the service can
// be tested against a stub.
type OAuthProvider interface {
	// LoginURL builds the provider's consent screen URL.
	LoginURL(state string) string
	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (*GoogleUserInfo, error)
}

// UserStore is the subset of the users repository the service needs.
type UserStore interface {
	FindOrCreateByGoogleID(username, googleID string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
}

// Service maps provider identities to local users.
type Service struct {
	provider OAuthProvider
	users    UserStore
}

// NewService creates the authentication service.
func NewService(provider OAuthProvider, users UserStore) *Service {
	return &Service{
		provider: provider,
		users:    users,
	}
}

// LoginURL builds the consent screen URL for a state value.
func (s *Service) LoginURL(state string) string {
	return s.provider.LoginURL(state)
}

// HandleCallback resolves an authorization code to a local user, creating the
// user row on first login. Any failure returns an error and leaves no partial
// state behind; the caller redirects to the landing page.
func (s *Service) HandleCallback(ctx context.Context, code string) (*entities.User, error) {
	info, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange failed: %w", err)
	}

	username := info.Name
	if username == "" {
		username = info.Email
	}

	user, err := s.users.FindOrCreateByGoogleID(username, info.Sub)
	if err != nil {
		return nil, fmt.Errorf("resolve local user: %w", err)
	}

	log.Printf("User %d logged in via Google", user.ID)
	return user, nil
}

// GetUserByID fetches a user, used by the middleware to validate sessions.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetUserByID(id)
}
