package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-graph/backend/internal/graph"
	apperrors "recipe-graph/backend/pkg/errors"
)

// mockUserStore keeps accounts in memory
type mockUserStore struct {
	users  map[string]*graph.Credentials
	tokens map[string]string
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:  make(map[string]*graph.Credentials),
		tokens: make(map[string]string),
	}
}

func (m *mockUserStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*graph.User, string, error) {
	if _, ok := m.users[email]; ok {
		return nil, "", apperrors.NewConflict("user", email)
	}
	m.users[email] = &graph.Credentials{Email: email, Name: name, PasswordHash: passwordHash}
	token := "token-" + email
	m.tokens[token] = email
	return &graph.User{Email: email, Name: name}, token, nil
}

func (m *mockUserStore) VerifyUser(ctx context.Context, token string) (*graph.User, error) {
	email, ok := m.tokens[token]
	if !ok {
		return nil, apperrors.NewNotFound("verification token", token)
	}
	delete(m.tokens, token)
	m.users[email].Verified = true
	return &graph.User{Email: email, Name: m.users[email].Name, Verified: true}, nil
}

func (m *mockUserStore) GetCredentials(ctx context.Context, email string) (*graph.Credentials, error) {
	creds, ok := m.users[email]
	if !ok {
		return nil, apperrors.NewNotFound("user", email)
	}
	copied := *creds
	return &copied, nil
}

type sentMail struct {
	to, subject, body string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func newTestService(requireVerification bool) (*Service, *mockUserStore, *mockMailer) {
	store := newMockUserStore()
	m := &mockMailer{}
	svc := NewService(store, NewTokenService("test-secret", time.Hour), m, Options{
		PublicBaseURL:            "https://app.example.com/",
		RequireEmailVerification: requireVerification,
	})
	return svc, store, m
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "anything")
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	signed, expiresAt, err := tokens.Issue("ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	email, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
}

func TestTokenService_RejectsExpiredAndForeignTokens(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)
	signed, _, err := tokens.Issue("ada@example.com")
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Validate(signed)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthorized))

	other := NewTokenService("other-secret", time.Hour)
	foreign, _, err := other.Issue("ada@example.com")
	require.NoError(t, err)
	_, err = NewTokenService("secret", time.Hour).Validate(foreign)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthorized))

	_, err = tokens.Validate("garbage")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthorized))
}

func TestService_SignupSendsVerificationLink(t *testing.T) {
	svc, store, m := newTestService(true)

	user, err := svc.Signup(context.Background(), "Ada", " Ada@Example.com ", "longpassword")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.Verified)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "ada@example.com", m.sent[0].to)
	assert.Contains(t, m.sent[0].body, "https://app.example.com/api/auth/verify?token=token-ada%40example.com")

	creds := store.users["ada@example.com"]
	require.NotNil(t, creds)
	assert.NotEqual(t, "longpassword", creds.PasswordHash)
}

func TestService_SignupValidation(t *testing.T) {
	svc, _, _ := newTestService(true)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "not-an-email", "longpassword")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))

	_, err = svc.Signup(ctx, "Ada", "ada@example.com", "short")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))

	_, err = svc.Signup(ctx, " ", "ada@example.com", "longpassword")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))

	_, err = svc.Signup(ctx, "Ada", "ada@example.com", strings.Repeat("p", 80))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))

	_, err = svc.Signup(ctx, "Ada", "ada@example.com", strings.Repeat("p", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestService_SignupConflict(t *testing.T) {
	svc, _, _ := newTestService(true)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "longpassword")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "Ada", "ADA@example.com", "longpassword")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConflict))
}

func TestService_SignupSurvivesMailFailure(t *testing.T) {
	svc, store, m := newTestService(true)
	m.err = errors.New("smtp down")

	_, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "longpassword")
	require.NoError(t, err)
	assert.Contains(t, store.users, "ada@example.com")
}

func TestService_LoginFlow(t *testing.T) {
	svc, _, _ := newTestService(true)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "longpassword")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "longpassword")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthorized), "unverified login must fail")

	_, err = svc.Verify(ctx, "token-ada@example.com")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrongpassword")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthorized))

	_, err = svc.Login(ctx, "nobody@example.com", "longpassword")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	session, err := svc.Login(ctx, " ADA@example.com", "longpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.User.Verified)

	email, err := svc.tokens.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
}

func TestService_LoginWithoutVerificationRequirement(t *testing.T) {
	svc, _, _ := newTestService(false)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "longpassword")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "ada@example.com", "longpassword")
	require.NoError(t, err)
	assert.False(t, session.User.Verified)
}

func TestService_VerifyUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(true)
	_, err := svc.Verify(context.Background(), "nope")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokenService("secret", time.Hour)
	valid, _, err := tokens.Issue("ada@example.com")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentEmail(c)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), "ada@example.com")
			} else {
				assert.True(t, strings.Contains(w.Body.String(), `"error"`))
			}
		})
	}
}
