package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/token"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test_secret_key_32_bytes_long_ok"
	testIssuer = "http://localhost:4444"
)

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) Insert(user *models.User) (string, error) {
	return "", nil
}

func (s *stubUserRepo) GetOne(id string) (*models.User, bool, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, true, nil
	}
	return nil, false, nil
}

func (s *stubUserRepo) GetByUsername(username string) (*models.User, bool, error) {
	return nil, false, nil
}

func (s *stubUserRepo) CheckIfUsernameExist(username string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) CheckIfEmailExist(email string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) Lock(id string) error {
	return nil
}

func newTestMiddleware(user *models.User) (*Middleware, *token.Gate) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := token.New(testSecret, testIssuer)
	errs := errHandler.New("", testIssuer, nil, logger)

	return New(errs, logger, &stubUserRepo{user: user}, gate), gate
}

func adminOnlyChain(mid *Middleware, handlerCalled *bool) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	return mid.Authenticate(mid.RequireAdminUser(next))
}

func bearerRequest(t *testing.T, authToken string) *http.Request {
	t.Helper()

	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	return req
}

func TestRequireAdminUser_MemberForbidden(t *testing.T) {
	member := &models.User{
		ID:     "user-1",
		Role:   token.RoleMember,
		Status: repository.UserAccountActiveStatus,
	}
	mid, gate := newTestMiddleware(member)

	authToken, _, err := gate.Issue(member.ID, token.RoleMember)
	require.NoError(t, err)

	handlerCalled := false
	rr := httptest.NewRecorder()
	adminOnlyChain(mid, &handlerCalled).ServeHTTP(rr, bearerRequest(t, authToken))

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.False(t, handlerCalled)
}

func TestRequireAdminUser_AdminAllowed(t *testing.T) {
	admin := &models.User{
		ID:     "user-2",
		Role:   token.RoleAdmin,
		Status: repository.UserAccountActiveStatus,
	}
	mid, gate := newTestMiddleware(admin)

	authToken, _, err := gate.Issue(admin.ID, token.RoleAdmin)
	require.NoError(t, err)

	handlerCalled := false
	rr := httptest.NewRecorder()
	adminOnlyChain(mid, &handlerCalled).ServeHTTP(rr, bearerRequest(t, authToken))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, handlerCalled)
}

func TestRequireAdminUser_MissingTokenRejected(t *testing.T) {
	mid, _ := newTestMiddleware(nil)

	handlerCalled := false
	rr := httptest.NewRecorder()
	adminOnlyChain(mid, &handlerCalled).ServeHTTP(rr, bearerRequest(t, ""))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestAuthenticate_BadSignatureRejected(t *testing.T) {
	admin := &models.User{
		ID:     "user-2",
		Role:   token.RoleAdmin,
		Status: repository.UserAccountActiveStatus,
	}
	mid, _ := newTestMiddleware(admin)

	forgedGate := token.New("another_secret_key_entirely_here", testIssuer)
	authToken, _, err := forgedGate.Issue(admin.ID, token.RoleAdmin)
	require.NoError(t, err)

	handlerCalled := false
	rr := httptest.NewRecorder()
	adminOnlyChain(mid, &handlerCalled).ServeHTTP(rr, bearerRequest(t, authToken))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestAuthenticate_LockedAccountStaysUnauthenticated(t *testing.T) {
	locked := &models.User{
		ID:     "user-3",
		Role:   token.RoleMember,
		Status: repository.UserAccountLockedStatus,
	}
	mid, gate := newTestMiddleware(locked)

	authToken, _, err := gate.Issue(locked.ID, token.RoleMember)
	require.NoError(t, err)

	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	mid.Authenticate(mid.RequireAuthenticatedUser(next)).ServeHTTP(rr, bearerRequest(t, authToken))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestRequireAuthenticatedUser_MemberAllowed(t *testing.T) {
	member := &models.User{
		ID:     "user-1",
		Role:   token.RoleMember,
		Status: repository.UserAccountActiveStatus,
	}
	mid, gate := newTestMiddleware(member)

	authToken, _, err := gate.Issue(member.ID, token.RoleMember)
	require.NoError(t, err)

	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	mid.Authenticate(mid.RequireAuthenticatedUser(next)).ServeHTTP(rr, bearerRequest(t, authToken))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, handlerCalled)
}
