package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ErlanBelekov/admin-console/internal/authctx"
	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/session"
	"github.com/ErlanBelekov/admin-console/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	login        func(ctx context.Context, identifier, secret string) (*domain.Session, string, error)
	requestReset func(ctx context.Context, identifier string) error
	confirmReset func(ctx context.Context, token, newSecret, confirmationSecret string) error
	logout       func(ctx context.Context, token string) error
}

func (f *fakeAuthUsecase) Login(ctx context.Context, identifier, secret string) (*domain.Session, string, error) {
	return f.login(ctx, identifier, secret)
}

func (f *fakeAuthUsecase) RequestReset(ctx context.Context, identifier string) error {
	return f.requestReset(ctx, identifier)
}

func (f *fakeAuthUsecase) ConfirmReset(ctx context.Context, token, newSecret, confirmationSecret string) error {
	return f.confirmReset(ctx, token, newSecret, confirmationSecret)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, token string) error {
	return f.logout(ctx, token)
}

var testCookies = session.CookiePolicy{
	Name:     session.CookieName,
	Path:     "/",
	MaxAge:   session.DefaultTTL,
	HTTPOnly: true,
	Secure:   true,
	SameSite: http.SameSiteLaxMode,
}

func newTestEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, testCookies, logger)

	r := gin.New()
	r.POST("/authentication/login", h.Login)
	r.POST("/authentication/get-reset-link", h.GetResetLink)
	r.POST("/authentication/reset-password", h.ResetPassword)
	r.POST("/authentication/logout", h.Logout)
	return r
}

type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func post(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w, env
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ---- Login ----

func TestLogin_InvalidJSON_Returns400(t *testing.T) {
	w, env := post(t, newTestEngine(&fakeAuthUsecase{}), "/authentication/login", `{bad json}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if env.Status || env.Message != "invalid request" {
		t.Errorf("body = %+v", env)
	}
}

func TestLogin_Success_SetsCookie(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, id, secret string) (*domain.Session, string, error) {
			if id != "admin@example.com" || secret != "Password1234" {
				t.Errorf("got %q/%q", id, secret)
			}
			return &domain.Session{Subject: id}, "session-token", nil
		},
	}
	w, env := post(t, newTestEngine(uc), "/authentication/login",
		`{"identifier":"admin@example.com","secret":"Password1234"}`)

	if w.Code != http.StatusOK || !env.Status || env.Message != "authentication successful" {
		t.Fatalf("status=%d body=%+v", w.Code, env)
	}
	c := findCookie(w, "authToken")
	if c == nil {
		t.Fatal("authToken cookie not set")
	}
	if c.Value != "session-token" || !c.HttpOnly || !c.Secure || c.Path != "/" || c.MaxAge != 604800 {
		t.Errorf("cookie = %+v", c)
	}
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	for _, err := range []error{domain.ErrNotFound, domain.ErrSecretMismatch} {
		uc := &fakeAuthUsecase{
			login: func(context.Context, string, string) (*domain.Session, string, error) {
				return nil, "", err
			},
		}
		w, env := post(t, newTestEngine(uc), "/authentication/login",
			`{"identifier":"admin@example.com","secret":"Wrong1234"}`)

		if w.Code != http.StatusOK {
			t.Errorf("%v: status = %d, want 200", err, w.Code)
		}
		if env.Status || env.Message != "authentication failed" {
			t.Errorf("%v: body = %+v", err, env)
		}
		if findCookie(w, "authToken") != nil {
			t.Errorf("%v: cookie set on failure", err)
		}
	}
}

func TestLogin_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(context.Context, string, string) (*domain.Session, string, error) {
			return nil, "", errors.New("db down")
		},
	}
	w, env := post(t, newTestEngine(uc), "/authentication/login", `{"identifier":"a@b.co","secret":"x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if env.Message != "internal server error" || strings.Contains(w.Body.String(), "db down") {
		t.Errorf("body leaks internals: %s", w.Body.String())
	}
}

// ---- GetResetLink ----

func TestGetResetLink(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		status  bool
		message string
	}{
		{"sent", nil, http.StatusOK, true, "reset link sent"},
		{"missing identifier", domain.ErrMissingIdentifier, http.StatusOK, false, "missing identifier"},
		{"not found", domain.ErrNotFound, http.StatusOK, false, "not found"},
		{"store fault", errors.New("db down"), http.StatusInternalServerError, false, "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				requestReset: func(context.Context, string) error { return tc.err },
			}
			w, env := post(t, newTestEngine(uc), "/authentication/get-reset-link", `{"identifier":"admin@example.com"}`)

			if w.Code != tc.code || env.Status != tc.status || env.Message != tc.message {
				t.Errorf("got %d %+v, want %d {%v %q}", w.Code, env, tc.code, tc.status, tc.message)
			}
		})
	}
}

// ---- ResetPassword ----

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		status  bool
		message string
	}{
		{"updated", nil, http.StatusOK, true, "password updated"},
		{"missing", domain.ErrMissingSecret, http.StatusOK, false, "missing"},
		{"mismatch", domain.ErrSecretConfirmMismatch, http.StatusOK, false, "mismatch"},
		{"weak", domain.ErrWeakSecret, http.StatusOK, false, "invalid secret"},
		{"token", domain.ErrTokenInvalid, http.StatusOK, false, "invalid or expired token"},
		{"store fault", errors.New("db down"), http.StatusInternalServerError, false, "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotToken, gotNew, gotConfirm string
			uc := &fakeAuthUsecase{
				confirmReset: func(_ context.Context, token, n, c string) error {
					gotToken, gotNew, gotConfirm = token, n, c
					return tc.err
				},
			}
			w, env := post(t, newTestEngine(uc), "/authentication/reset-password",
				`{"token":"tok","newSecret":"Abcdef12","confirmationSecret":"Abcdef12"}`)

			if w.Code != tc.code || env.Status != tc.status || env.Message != tc.message {
				t.Errorf("got %d %+v, want %d {%v %q}", w.Code, env, tc.code, tc.status, tc.message)
			}
			if gotToken != "tok" || gotNew != "Abcdef12" || gotConfirm != "Abcdef12" {
				t.Errorf("usecase got %q %q %q", gotToken, gotNew, gotConfirm)
			}
		})
	}
}

// ---- Logout ----

func TestLogout_ClearsCookieEvenOnError(t *testing.T) {
	var gotToken string
	uc := &fakeAuthUsecase{
		logout: func(_ context.Context, token string) error {
			gotToken = token
			return errors.New("redis down")
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authentication/logout", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: "session-token"})
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotToken != "session-token" {
		t.Errorf("usecase got token %q", gotToken)
	}
	c := findCookie(w, "authToken")
	if c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("cookie not cleared: %+v", c)
	}
	if !strings.Contains(w.Body.String(), "logout successful") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestLogout_WithoutCookie(t *testing.T) {
	uc := &fakeAuthUsecase{
		logout: func(_ context.Context, token string) error {
			if token != "" {
				t.Errorf("token = %q, want empty", token)
			}
			return nil
		},
	}
	w, env := post(t, newTestEngine(uc), "/authentication/logout", ``)
	if w.Code != http.StatusOK || !env.Status {
		t.Errorf("got %d %+v", w.Code, env)
	}
}

// ---- Dashboard ----

func TestDashboard_ReadsGuardSession(t *testing.T) {
	h := handler.NewDashboardHandler()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Session") != "" {
			s := &domain.AuthSession{SessionID: "s-1", Subject: "admin@example.com"}
			c.Request = c.Request.WithContext(authctx.WithSession(c.Request.Context(), s))
		}
		c.Next()
	})
	r.GET("/dashboard", h.Index)
	r.GET("/dashboard/session", h.Session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/session", nil)
	req.Header.Set("X-Test-Session", "1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got domain.AuthSession
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Subject != "admin@example.com" || got.SessionID != "s-1" {
		t.Errorf("session = %+v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unguarded status = %d, want 401", w.Code)
	}
}

// ---- Throttling ----

func TestTooManyRequests_Envelope(t *testing.T) {
	r := gin.New()
	r.POST("/authentication/login", handler.TooManyRequests)

	w, env := post(t, r, "/authentication/login", `{}`)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if env.Status || env.Message != "too many requests" {
		t.Errorf("body = %+v", env)
	}
}
