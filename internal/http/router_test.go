package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklib/internal/auth"
	"github.com/mrlokans/booklib/internal/config"
	"github.com/mrlokans/booklib/internal/covers"
	"github.com/mrlokans/booklib/internal/database"
	"github.com/mrlokans/booklib/internal/database/books"
	"github.com/mrlokans/booklib/internal/database/users"
	"github.com/mrlokans/booklib/internal/entities"
)

// testStack wires the full application against stubbed Google and
// OpenLibrary endpoints.
type testStack struct {
	server *httptest.Server
	client *http.Client
	db     *database.Database
}

func setupStack(t *testing.T) *testStack {
	return setupStackWithCSRF(t, nil)
}

func setupStackWithCSRF(t *testing.T, csrfSecret []byte) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_router_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	// Stubbed Google: the token endpoint accepts the fixed test code, the
	// userinfo endpoint always answers for the same account.
	oauthStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			r.ParseForm()
			if r.PostForm.Get("code") != "test-auth-code" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "stub-access-token",
				"token_type":   "Bearer",
			})
		case "/userinfo":
			json.NewEncoder(w).Encode(map[string]string{
				"sub":   "google-sub-777",
				"email": "jane@example.com",
				"name":  "Jane Reader",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(oauthStub.Close)

	// Stubbed OpenLibrary covers endpoint.
	coversStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/b/isbn/") {
			w.Write([]byte("jpeg-bytes"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(coversStub.Close)

	usersRepo := users.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)

	googleCfg := config.Google{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://localhost/auth/google/booklib",
	}
	provider := auth.NewGoogleProvider(googleCfg, auth.WithEndpoints(
		oauthStub.URL+"/auth", oauthStub.URL+"/token", oauthStub.URL+"/userinfo",
	))
	service := auth.NewService(provider, usersRepo)

	authCfg := config.Auth{
		SessionLifetime: time.Hour,
		SecureCookies:   false,
	}
	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	sm, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		BookStore:      booksRepo,
		CoverFetcher:   covers.NewClientWithBaseURL(coversStub.URL),
		Database:       db,
		AuthController: auth.NewAuthController(service, sm, authCfg),
		AuthMiddleware: auth.NewMiddleware(service, sm),
		SessionManager: sm,
		AuthConfig:     authCfg,
		CSRFSecret:     csrfSecret,
		TemplatesPath:  "../../templates",
		StaticPath:     "../../static",
		Version:        "test",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testStack{server: server, client: client, db: db}
}

func (s *testStack) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.server.URL + path)
	require.NoError(t, err)
	return resp
}

func (s *testStack) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := s.client.PostForm(s.server.URL+path, form)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// login walks the OAuth round trip against the stubbed provider and leaves
// a session cookie in the client's jar.
func (s *testStack) login(t *testing.T) {
	t.Helper()

	resp := s.get(t, "/auth/google")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	resp.Body.Close()

	authorizeURL, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := authorizeURL.Query().Get("state")
	require.NotEmpty(t, state)

	resp = s.get(t, "/auth/google/booklib?state="+url.QueryEscape(state)+"&code=test-auth-code")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/home", resp.Header.Get("Location"))
	resp.Body.Close()
}

func TestRouter_UnauthenticatedIsRedirectedToLanding(t *testing.T) {
	stack := setupStack(t)

	for _, path := range []string{"/home", "/title", "/rating", "/recency", "/add-book", "/book/1", "/edit-book/1", "/delete-book/1"} {
		resp := stack.get(t, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
	}
}

func TestRouter_LandingPageForVisitors(t *testing.T) {
	stack := setupStack(t)

	resp := stack.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "/auth/google")
}

func TestRouter_HealthIsPublic(t *testing.T) {
	stack := setupStack(t)

	resp := stack.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"status": "ok"`)
	assert.Contains(t, body, `"database": "ok"`)
}

func TestRouter_LoginCreatesUserAndSession(t *testing.T) {
	stack := setupStack(t)

	stack.login(t)

	var count int64
	require.NoError(t, stack.db.DB.Model(&entities.User{}).Where("google_id = ?", "google-sub-777").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp := stack.get(t, "/home")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Jane Reader")
	assert.Contains(t, body, "No books yet")

	// The landing page now bounces to the list
	resp = stack.get(t, "/")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))
}

func TestRouter_CallbackWithBadStateFailsClosed(t *testing.T) {
	stack := setupStack(t)

	resp := stack.get(t, "/auth/google")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = stack.get(t, "/auth/google/booklib?state=forged&code=test-auth-code")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// No session was established
	resp = stack.get(t, "/home")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestRouter_AddBookAppearsOnHome(t *testing.T) {
	stack := setupStack(t)
	stack.login(t)

	resp := stack.postForm(t, "/add-book", url.Values{
		"title":     {"Dune"},
		"author":    {"Herbert"},
		"isbn":      {"9780441013593"},
		"review":    {"Sandworms."},
		"rating":    {"5"},
		"date_read": {"2020-01-01"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/home", resp.Header.Get("Location"))

	resp = stack.get(t, "/home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Dune")
	assert.Contains(t, body, "Herbert")
	assert.Contains(t, body, "/b/isbn/9780441013593-M.jpg")
	assert.Equal(t, 1, strings.Count(body, "book-card"))
}

func TestRouter_BookDetailEditAndDelete(t *testing.T) {
	stack := setupStack(t)
	stack.login(t)

	resp := stack.postForm(t, "/add-book", url.Values{
		"title":  {"Dune"},
		"author": {"Herbert"},
		"isbn":   {"9780441013593"},
		"rating": {"5"},
	})
	resp.Body.Close()

	var book entities.Book
	require.NoError(t, stack.db.DB.First(&book).Error)

	bookPath := "/book/" + itoa(book.ID)
	resp = stack.get(t, bookPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Dune")

	resp = stack.postForm(t, "/edit-book/"+itoa(book.ID), url.Values{
		"title":     {"Dune Messiah"},
		"author":    {"Herbert"},
		"isbn":      {"9780441013593"},
		"rating":    {"4"},
		"date_read": {"2021-02-02"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, bookPath, resp.Header.Get("Location"))

	resp = stack.get(t, bookPath)
	assert.Contains(t, readBody(t, resp), "Dune Messiah")

	resp = stack.get(t, "/delete-book/"+itoa(book.ID))
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = stack.get(t, "/home")
	assert.Contains(t, readBody(t, resp), "No books yet")
}

func TestRouter_LogoutEndsSession(t *testing.T) {
	stack := setupStack(t)
	stack.login(t)

	resp := stack.get(t, "/logout")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = stack.get(t, "/home")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

var csrfTokenPattern = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

func TestRouter_CSRFRejectsFormPostWithoutToken(t *testing.T) {
	stack := setupStackWithCSRF(t, []byte("01234567890123456789012345678901"))
	stack.login(t)

	// A cross-site POST carries the session cookie but no token
	resp := stack.postForm(t, "/add-book", url.Values{
		"title":  {"Forged"},
		"rating": {"1"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, stack.db.DB.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "rejected POST must not insert a book")
}

func TestRouter_CSRFAcceptsFormPostWithToken(t *testing.T) {
	stack := setupStackWithCSRF(t, []byte("01234567890123456789012345678901"))
	stack.login(t)

	resp := stack.get(t, "/add-book")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := csrfTokenPattern.FindStringSubmatch(readBody(t, resp))
	require.Len(t, match, 2, "add form must embed a CSRF token")

	resp = stack.postForm(t, "/add-book", url.Values{
		"gorilla.csrf.Token": {match[1]},
		"title":              {"Dune"},
		"author":             {"Herbert"},
		"isbn":               {"9780441013593"},
		"rating":             {"5"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, stack.db.DB.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
