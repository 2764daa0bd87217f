package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerdash/internal/core"
)

type recordingAuditor struct {
	events []bool
	err    error
}

func (a *recordingAuditor) RecordLogin(_ context.Context, _ string, success bool, _ string) error {
	a.events = append(a.events, success)
	return a.err
}

func newService(t *testing.T, auditor Auditor) *Service {
	t.Helper()
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(NewMemoryStore(DemoUsers()...), issuer, auditor, nil)
}

func TestLogin(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := newService(t, auditor)
	ctx := context.Background()

	res, err := svc.Login(ctx, Credentials{Email: " Admin@Example.com ", Password: "password123"}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.User.ID)
	assert.Equal(t, "admin", res.User.Role)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.Issuer().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "1", claims.Subject)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)

	_, err = svc.Login(ctx, Credentials{Email: "admin@example.com", Password: "wrong"}, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Login(ctx, Credentials{Email: "ghost@example.com", Password: "x"}, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Login(ctx, Credentials{Email: "admin@example.com"}, "")
	assert.True(t, core.IsValidation(err))

	assert.Equal(t, []bool{true, false, false}, auditor.events)
}

func TestLoginSurvivesAuditFailure(t *testing.T) {
	svc := newService(t, &recordingAuditor{err: errors.New("broker down")})
	_, err := svc.Login(context.Background(), Credentials{Email: "user@example.com", Password: "userpass"}, "")
	assert.NoError(t, err)
}

func TestPasswordNotSerialized(t *testing.T) {
	svc := newService(t, nil)
	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user@example.com", users[1].Email)

	b, err := json.Marshal(users[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"email":"admin@example.com","name":"Admin User","role":"admin"}`, string(b))
}

func TestVerifyRejects(t *testing.T) {
	issuer, err := NewIssuer("secret-a", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := other.Issue(DemoUsers()[0])
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, core.ErrUnauthorized, "wrong secret")

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.Issue(DemoUsers()[0])
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.Verify(expired)
	assert.ErrorIs(t, err, core.ErrUnauthorized, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(none)
	assert.ErrorIs(t, err, core.ErrUnauthorized, "alg none")

	_, err = NewIssuer(" ", time.Hour)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue(DemoUsers()[1])
	require.NoError(t, err)

	h := Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(claims.Role))
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"invalid", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}
