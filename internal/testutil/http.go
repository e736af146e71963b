package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID   string
	Name string
}

// ModeratorUser returns a fresh TestUser intended to moderate a series.
func ModeratorUser() TestUser {
	return TestUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Moderator",
	}
}

// ParticipantUser returns a fresh TestUser intended as plain participant.
func ParticipantUser() TestUser {
	return TestUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Participant",
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers, bypassing the identity middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return authz.WithTestUser(r, authz.User{ID: user.ID, Name: user.Name})
}

// NewRequest creates an HTTP request for testing. A non-empty body is sent
// as JSON.
func NewRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target, body string, user TestUser) *http.Request {
	return WithUser(NewRequest(method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
