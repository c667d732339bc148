package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func protected(roles ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, _ := GetSubjectFromContext(r.Context())
		w.Header().Set("X-Subject", sub)
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(secret)(Authorize(roles...)(ok))
}

func request(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	organizer, err := IssueToken(secret, "alice", RoleOrganizer, time.Hour)
	require.NoError(t, err)
	scorekeeper, err := IssueToken(secret, "bob", RoleScorekeeper, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, "carol", RoleOrganizer, -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken([]byte("other"), "dave", RoleOrganizer, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		roles  []string
		status int
	}{
		{"organizer allowed", organizer, []string{RoleOrganizer}, http.StatusNoContent},
		{"scorekeeper forbidden", scorekeeper, []string{RoleOrganizer}, http.StatusForbidden},
		{"scorekeeper allowed", scorekeeper, []string{RoleScorekeeper, RoleOrganizer}, http.StatusNoContent},
		{"no token", "", []string{RoleOrganizer}, http.StatusUnauthorized},
		{"expired", expired, []string{RoleOrganizer}, http.StatusUnauthorized},
		{"wrong secret", foreign, []string{RoleOrganizer}, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", []string{RoleOrganizer}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(t, protected(tt.roles...), tt.token)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := request(t, protected(RoleOrganizer), organizer)
	assert.Equal(t, "alice", rec.Header().Get("X-Subject"))
}

func TestUnknownRoleRejected(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "eve",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	rec := request(t, protected(RoleOrganizer), token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
