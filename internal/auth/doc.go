// Package auth provides Google OAuth login, server-side sessions, and the
// session guard for protected routes.
//
// Login is fully delegated to Google: the browser is redirected to the
// consent screen, the callback exchanges the authorization code for a
// profile, and the profile's subject identifier is mapped to a local user
// (created on first login). Sessions are stored server-side in SQLite via
// scs. Every failure in the flow redirects to the public landing page
// without establishing a session.
//
// # Configuration
//
//	GOOGLE_CLIENT_ID=<client id>
//	GOOGLE_CLIENT_SECRET=<client secret>
//	GOOGLE_REDIRECT_URL=https://example.com/auth/google/booklib
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	provider := auth.NewGoogleProvider(cfg.Google)
//	authService := auth.NewService(provider, userRepo)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	protected.Use(authMiddleware.RequireAuth())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
