package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// principalStore serves a fixed set of users to the middleware.
type principalStore struct {
	byID map[string]*entity.User
}

func (s *principalStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := s.byID[id]
	if !ok || !u.Active {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *principalStore) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (s *principalStore) Create(context.Context, *entity.User) error { return nil }
func (s *principalStore) List(context.Context) ([]*entity.User, error) {
	return nil, nil
}
func (s *principalStore) UpdateProfile(context.Context, *entity.User) error { return nil }
func (s *principalStore) UpdatePassword(context.Context, string, string, time.Time) error {
	return nil
}
func (s *principalStore) SetResetToken(context.Context, string, string, time.Time) error {
	return nil
}
func (s *principalStore) ClearResetToken(context.Context, string, string) error { return nil }
func (s *principalStore) ConsumeResetToken(context.Context, string, string, time.Time, time.Time) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (s *principalStore) Deactivate(context.Context, string) error { return nil }

func protectedRouter(jwt *helpers.JWTManager, store *principalStore, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{Protect(jwt, store)}, extra...)
	r.GET("/me", append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).ID)
	})...)
	return r
}

func get(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtect(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	alice := &entity.User{ID: "u1", Email: "a@b.com", Role: entity.RoleUser, Active: true}
	store := &principalStore{byID: map[string]*entity.User{"u1": alice}}
	r := protectedRouter(jwt, store)

	token, _, err := jwt.Issue("u1", time.Now())
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestProtect_MissingOrMalformedHeader(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	store := &principalStore{byID: map[string]*entity.User{}}
	r := protectedRouter(jwt, store)

	for _, authz := range []string{"", "Basic abc", "Bearer", "token-without-scheme"} {
		w := get(r, authz)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "authz=%q", authz)
		assert.Contains(t, w.Body.String(), "you are not logged in")
	}
}

func TestProtect_GarbageToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	store := &principalStore{byID: map[string]*entity.User{}}
	r := protectedRouter(jwt, store)

	w := get(r, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtect_ExpiredToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	alice := &entity.User{ID: "u1", Active: true}
	store := &principalStore{byID: map[string]*entity.User{"u1": alice}}
	r := protectedRouter(jwt, store)

	token, _, err := jwt.Issue("u1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtect_WrongKey(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	other := helpers.NewJWTManager("other-secret", time.Hour)
	store := &principalStore{byID: map[string]*entity.User{}}
	r := protectedRouter(jwt, store)

	token, _, err := other.Issue("u1", time.Now())
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtect_StalePrincipal(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	store := &principalStore{byID: map[string]*entity.User{}} // nobody home
	r := protectedRouter(jwt, store)

	token, _, err := jwt.Issue("ghost", time.Now())
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no longer exists")
}

func TestProtect_DeactivatedPrincipal(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	alice := &entity.User{ID: "u1", Active: false}
	store := &principalStore{byID: map[string]*entity.User{"u1": alice}}
	r := protectedRouter(jwt, store)

	token, _, err := jwt.Issue("u1", time.Now())
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no longer exists")
}

func TestProtect_TokenIssuedBeforePasswordChange(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	changed := time.Now().Add(-5 * time.Minute)
	alice := &entity.User{ID: "u1", Active: true, PasswordChangedAt: &changed}
	store := &principalStore{byID: map[string]*entity.User{"u1": alice}}
	r := protectedRouter(jwt, store)

	// Issued before the change: rejected.
	old, _, err := jwt.Issue("u1", time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	w := get(r, "Bearer "+old)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "password was changed recently")

	// Issued after the change: accepted.
	fresh, _, err := jwt.Issue("u1", time.Now())
	require.NoError(t, err)
	w = get(r, "Bearer "+fresh)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	user := &entity.User{ID: "u1", Role: entity.RoleUser, Active: true}
	admin := &entity.User{ID: "u2", Role: entity.RoleAdmin, Active: true}
	store := &principalStore{byID: map[string]*entity.User{"u1": user, "u2": admin}}
	r := protectedRouter(jwt, store, RequireRole(entity.RoleAdmin))

	userToken, _, err := jwt.Issue("u1", time.Now())
	require.NoError(t, err)
	adminToken, _, err := jwt.Issue("u2", time.Now())
	require.NoError(t, err)

	w := get(r, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "do not have permission")

	w = get(r, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
