package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func newTestContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	c.Request = req
	return c, w
}

// lastFlashCookie returns the final Set-Cookie for the flash cookie, which is what a browser keeps
func lastFlashCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == CookieName {
			found = cookie
		}
	}
	if found == nil {
		t.Fatalf("response did not set %s", CookieName)
	}
	return found
}

func TestFlashSurvivesRedirect(t *testing.T) {
	store := NewStore(Config{SecretKey: "test-secret"})

	c, w := newTestContext()
	store.Success(c, "Student information saved successfully")
	store.Warning(c, "Photo could not be saved")
	cookie := lastFlashCookie(t, w)

	next, nextW := newTestContext(cookie)
	messages := store.Pop(next)
	want := []Message{
		{Category: CategorySuccess, Message: "Student information saved successfully"},
		{Category: CategoryWarning, Message: "Photo could not be saved"},
	}
	if len(messages) != len(want) {
		t.Fatalf("Pop() = %v, want %v", messages, want)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Fatalf("message %d = %v, want %v", i, messages[i], want[i])
		}
	}
	if cleared := lastFlashCookie(t, nextW); cleared.MaxAge >= 0 {
		t.Fatalf("flash cookie not cleared: %+v", cleared)
	}
	if again := store.Pop(next); len(again) != 0 {
		t.Fatalf("second Pop() = %v, want empty", again)
	}
}

func TestFlashAddAndPopInSameRequest(t *testing.T) {
	store := NewStore(Config{SecretKey: "test-secret"})
	c, w := newTestContext()

	store.Warning(c, "Student records are temporarily unavailable")
	messages := store.Pop(c)
	if len(messages) != 1 || messages[0].Category != CategoryWarning {
		t.Fatalf("Pop() = %v", messages)
	}
	if cleared := lastFlashCookie(t, w); cleared.MaxAge >= 0 {
		t.Fatalf("message would be shown twice, cookie = %+v", cleared)
	}
}

func TestFlashIgnoresUntrustedCookies(t *testing.T) {
	store := NewStore(Config{SecretKey: "test-secret"})
	other := NewStore(Config{SecretKey: "other-secret"})

	c, w := newTestContext()
	other.Error(c, "forged")
	forged := lastFlashCookie(t, w)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Messages: []Message{{Category: CategoryError, Message: "stale"}},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(store.key)
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	for name, value := range map[string]string{
		"wrong secret": forged.Value,
		"expired":      expired,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			ctx, _ := newTestContext(&http.Cookie{Name: CookieName, Value: value})
			if messages := store.Pop(ctx); len(messages) != 0 {
				t.Fatalf("Pop() = %v, want empty", messages)
			}
		})
	}
}

func TestPopWithoutMessages(t *testing.T) {
	store := NewStore(Config{SecretKey: "test-secret"})
	c, w := newTestContext()
	if messages := store.Pop(c); len(messages) != 0 {
		t.Fatalf("Pop() = %v, want empty", messages)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("unexpected cookies: %v", w.Result().Cookies())
	}
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	if err != nil {
		t.Fatalf("RandomSecret() error = %v", err)
	}
	b, _ := RandomSecret()
	if len(a) != 64 || a == b {
		t.Fatalf("RandomSecret() = %q, %q", a, b)
	}
}

func TestDeriveKeyIsStablePerSecret(t *testing.T) {
	a := deriveKey("test-secret")
	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32", len(a))
	}
	if string(a) != string(deriveKey("test-secret")) {
		t.Fatalf("derivation is not deterministic")
	}
	if string(a) == string(deriveKey("other-secret")) || string(a) == "test-secret" {
		t.Fatalf("derived key does not depend on the secret")
	}
}
