package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/booklib/internal/config"
)

const (
	defaultGoogleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultGoogleTokenURL    = "https://oauth2.googleapis.com/token"
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleUserInfo is the identity returned by Google after a successful
// authorization code exchange.
type GoogleUserInfo struct {
	Sub   string // Google's stable subject identifier
	Email string
	Name  string
}

// GoogleProvider implements the authorization code flow against Google's
// OAuth 2.0 endpoints. Endpoint URLs can be overridden for tests.
type GoogleProvider struct {
	config     config.Google
	httpClient *http.Client

	authURL     string
	tokenURL    string
	userInfoURL string
}

// GoogleProviderOption customizes a GoogleProvider.
type GoogleProviderOption func(*GoogleProvider)

// WithEndpoints overrides Google's endpoint URLs. Used in tests.
func WithEndpoints(authURL, tokenURL, userInfoURL string) GoogleProviderOption {
	return func(p *GoogleProvider) {
		p.authURL = authURL
		p.tokenURL = tokenURL
		p.userInfoURL = userInfoURL
	}
}

// NewGoogleProvider creates a provider from the Google OAuth configuration.
func NewGoogleProvider(cfg config.Google, opts ...GoogleProviderOption) *GoogleProvider {
	p := &GoogleProvider{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		authURL:     defaultGoogleAuthURL,
		tokenURL:    defaultGoogleTokenURL,
		userInfoURL: defaultGoogleUserInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoginURL builds the consent screen URL. Scope is limited to basic profile.
func (p *GoogleProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return p.authURL + "?" + params.Encode()
}

// Exchange trades an authorization code for an access token and fetches the
// user's profile with it.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUserInfo, error) {
	accessToken, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	userInfo, err := p.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	return userInfo, nil
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *GoogleProvider) exchangeToken(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return tokenResp.AccessToken, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("user info endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("parse user info response: %w", err)
	}
	if userInfo.Sub == "" {
		return nil, fmt.Errorf("empty subject in user info response")
	}

	return &GoogleUserInfo{
		Sub:   userInfo.Sub,
		Email: userInfo.Email,
		Name:  userInfo.Name,
	}, nil
}
