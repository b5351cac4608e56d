package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	e := echo.New()
	userID := uuid.New()
	token, err := generateToken(userID)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	handler := Middleware(func(c echo.Context) error {
		got, err := UserIDFrom(c)
		if err != nil {
			t.Fatalf("UserIDFrom: %v", err)
		}
		if got != userID {
			t.Errorf("user ID = %s, want %s", got, userID)
		}
		return c.NoContent(http.StatusOK)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	rejects := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic dXNlcjpwdw=="},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			err := handler(e.NewContext(req, rec))
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusUnauthorized {
				t.Fatalf("err = %v, want a 401 HTTPError", err)
			}
		})
	}
}

func TestUserIDFromWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := UserIDFrom(c); err == nil {
		t.Error("expected an error when no user is set on the context")
	}
}
