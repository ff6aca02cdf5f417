package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklib/internal/config"
)

// AuthController handles the OAuth login, callback, and logout endpoints.
// Every failure path redirects to the landing page without establishing a
// session.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/auth/google", ac.Login)
	router.GET("/auth/google/booklib", ac.Callback)
	router.GET("/logout", ac.Logout)
}

// Login starts the OAuth flow: generate a state value, remember it in a
// cookie, and send the browser to Google's consent screen.
func (ac *AuthController) Login(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/home")
		return
	}

	state, err := NewState()
	if err != nil {
		log.Printf("Failed to generate OAuth state: %v", err)
		c.Redirect(http.StatusFound, "/")
		return
	}

	SetStateCookie(c, state, ac.config.SecureCookies)
	c.Redirect(http.StatusFound, ac.service.LoginURL(state))
}

// Callback completes the OAuth flow. On any failure the user lands back on
// the public landing page with no session.
func (ac *AuthController) Callback(c *gin.Context) {
	if err := VerifyStateCookie(c, c.Query("state")); err != nil {
		log.Printf("OAuth state verification failed: %v", err)
		c.Redirect(http.StatusFound, "/")
		return
	}

	code := c.Query("code")
	if code == "" {
		log.Printf("OAuth callback without authorization code")
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, err := ac.service.HandleCallback(c.Request.Context(), code)
	if err != nil {
		log.Printf("OAuth callback failed: %v", err)
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session for user %d: %v", user.ID, err)
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, "/home")
}

// Logout destroys the session and returns to the landing page.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}
