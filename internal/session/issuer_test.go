package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/infrastructure/memory"
	"github.com/ErlanBelekov/admin-console/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newIssuer(c *clock, opts ...session.Option) (*session.Issuer, *memory.Store) {
	store := memory.NewStore()
	opts = append([]session.Option{session.WithClock(c.now)}, opts...)
	return session.NewIssuer(store, testKey, opts...), store
}

func TestIssue_ThenValidate(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(c)

	s, token, err := iss.Issue(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" || s.ID == "" {
		t.Fatalf("empty token or session id: %q %+v", token, s)
	}

	got, err := iss.Validate(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subject != "admin@example.com" || got.SessionID != s.ID {
		t.Errorf("session = %+v", got)
	}
	if !iss.IsValid(ctx, token) {
		t.Error("IsValid = false for fresh token")
	}
}

func TestIssue_DistinctTokens(t *testing.T) {
	ctx := context.Background()
	iss, _ := newIssuer(&clock{t: time.Now()})

	_, a, _ := iss.Issue(ctx, "admin@example.com")
	_, b, _ := iss.Issue(ctx, "admin@example.com")
	if a == b {
		t.Error("two sessions share a token")
	}
	if !iss.IsValid(ctx, a) || !iss.IsValid(ctx, b) {
		t.Error("concurrent sessions should both be valid")
	}
}

func TestValidate_Expired(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(c, session.WithTTL(time.Hour))

	_, token, _ := iss.Issue(ctx, "admin@example.com")
	c.advance(time.Hour + time.Second)

	_, err := iss.Validate(ctx, token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	iss, _ := newIssuer(c)
	_, token, _ := iss.Issue(ctx, "admin@example.com")

	other := session.NewIssuer(memory.NewStore(), []byte("another-key-another-key-another-k"), session.WithClock(c.now))
	_, foreign, _ := other.Issue(ctx, "admin@example.com")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin@example.com",
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", token[:len(token)-2] + "xx"},
		{"other key", foreign},
		{"alg none", unsigned},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := iss.Validate(ctx, tc.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("want ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestValidate_UnknownToStoreWithValidSignature(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	issuing := session.NewIssuer(memory.NewStore(), testKey, session.WithClock(c.now))
	checking := session.NewIssuer(memory.NewStore(), testKey, session.WithClock(c.now))

	_, token, _ := issuing.Issue(ctx, "admin@example.com")
	if checking.IsValid(ctx, token) {
		t.Error("token without a stored session must not validate")
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	iss, _ := newIssuer(&clock{t: time.Now()})

	_, token, _ := iss.Issue(ctx, "admin@example.com")
	if err := iss.Revoke(ctx, token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iss.IsValid(ctx, token) {
		t.Error("revoked token still valid")
	}

	for _, tok := range []string{token, "", "garbage"} {
		if err := iss.Revoke(ctx, tok); err != nil {
			t.Errorf("Revoke(%q): %v", tok, err)
		}
	}
}

func TestRevokeAll(t *testing.T) {
	ctx := context.Background()
	iss, _ := newIssuer(&clock{t: time.Now()})

	_, a, _ := iss.Issue(ctx, "admin@example.com")
	_, b, _ := iss.Issue(ctx, "admin@example.com")
	_, other, _ := iss.Issue(ctx, "user@example.com")

	n, err := iss.RevokeAll(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("revoked = %d, want 2", n)
	}
	if iss.IsValid(ctx, a) || iss.IsValid(ctx, b) {
		t.Error("subject sessions survived RevokeAll")
	}
	if !iss.IsValid(ctx, other) {
		t.Error("unrelated session revoked")
	}
}

func TestCookiePolicy(t *testing.T) {
	iss, _ := newIssuer(&clock{t: time.Now()})
	c := iss.CookiePolicy().Cookie("tok")

	if c.Name != "authToken" || c.Value != "tok" || c.Path != "/" {
		t.Errorf("cookie = %+v", c)
	}
	if !c.HttpOnly || !c.Secure {
		t.Error("cookie must be HttpOnly and Secure")
	}
	if c.MaxAge != 604800 {
		t.Errorf("MaxAge = %d, want 604800", c.MaxAge)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", c.SameSite)
	}

	cleared := iss.CookiePolicy().Clear()
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie = %+v", cleared)
	}
}

func TestCookiePolicy_Insecure(t *testing.T) {
	iss, _ := newIssuer(&clock{t: time.Now()}, session.WithSecureCookie(false))
	if iss.CookiePolicy().Cookie("tok").Secure {
		t.Error("Secure should be off")
	}
}
