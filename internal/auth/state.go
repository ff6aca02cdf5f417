package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// stateCookieName holds the OAuth state between the consent redirect and the
// provider's callback.
const stateCookieName = "oauth_state"

// stateCookieMaxAge bounds how long a pending login may take, in seconds.
const stateCookieMaxAge = 600

// NewState generates a random state value for the OAuth redirect.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SetStateCookie stores the state in a short-lived HttpOnly cookie before
// redirecting to the consent screen.
func SetStateCookie(c *gin.Context, state string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// VerifyStateCookie compares the callback's state parameter against the
// cookie and clears the cookie. A mismatch means the callback did not
// originate from a login this server started.
func VerifyStateCookie(c *gin.Context, state string) error {
	cookie, err := c.Request.Cookie(stateCookieName)

	// Clear the cookie regardless of outcome; state is single-use.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if err != nil {
		return fmt.Errorf("missing state cookie: %w", err)
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return fmt.Errorf("state mismatch")
	}
	return nil
}
