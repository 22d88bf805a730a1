package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/apperrors"
	"github.com/showbase/showbase/pkg/helpers"
)

// fakeUserRepo is an in-memory CredentialStore with the same atomicity
// guarantees as the pgx implementation: every mutation happens under one
// lock, and reset-token consumption is a single conditional step.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Active && existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = "user-" + strconv.Itoa(r.seq)
	u.Active = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Active && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if u.Active {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok || !stored.Active {
		return repository.ErrNotFound
	}
	stored.Name = u.Name
	stored.Email = u.Email
	stored.AvatarURL = u.AvatarURL
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Active {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	ca := changedAt
	u.PasswordChangedAt = &ca
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Active {
		return repository.ErrNotFound
	}
	h, e := tokenHash, expiry
	u.ResetTokenHash = &h
	u.ResetTokenExpiry = &e
	return nil
}

func (r *fakeUserRepo) ClearResetToken(_ context.Context, id, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash {
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
	}
	return nil
}

func (r *fakeUserRepo) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now, changedAt time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.Active || u.ResetTokenHash == nil || u.ResetTokenExpiry == nil {
			continue
		}
		if *u.ResetTokenHash != tokenHash || !u.ResetTokenExpiry.After(now) {
			continue
		}
		u.PasswordHash = passwordHash
		ca := changedAt
		u.PasswordChangedAt = &ca
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Active {
		return repository.ErrNotFound
	}
	u.Active = false
	return nil
}

// stored returns the raw stored record, bypassing the active filter.
func (r *fakeUserRepo) stored(id string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string // bodies
	to    []string
	fail  bool
	calls int
}

func (n *fakeNotifier) Send(_ context.Context, to, _ string, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return errors.New("smtp unreachable")
	}
	n.to = append(n.to, to)
	n.sent = append(n.sent, body)
	return nil
}

func (n *fakeNotifier) lastBody() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1]
}

// tokenFromBody pulls the reset-token plaintext out of the email body:
// the last path segment of the URL on the first line.
func tokenFromBody(t *testing.T, body string) string {
	t.Helper()
	_, after, found := strings.Cut(body, "to: ")
	require.True(t, found, "body should contain the reset URL")
	url, _, _ := strings.Cut(after, "\n")
	idx := strings.LastIndex(url, "/")
	require.GreaterOrEqual(t, idx, 0)
	return url[idx+1:]
}

func newTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeNotifier, *time.Time) {
	t.Helper()
	repo := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := NewAuthService(
		repo,
		helpers.NewPasswordHasher(4), // min cost, tests only
		helpers.NewJWTManager("test-secret", time.Hour),
		notifier,
		nil,
		nil,
		10*time.Minute,
	)
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return clock }
	return svc, repo, notifier, &clock
}

func mustSignup(t *testing.T, svc *AuthService, email string) *AuthResult {
	t.Helper()
	res, err := svc.Signup(context.Background(), "Alice", email, "Secret123", "Secret123")
	require.NoError(t, err)
	return res
}

func TestSignup(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	res := mustSignup(t, svc, "Alice@Example.COM")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, entity.RoleUser, res.User.Role)
	assert.Equal(t, "alice@example.com", res.User.Email, "email is case-folded")

	stored := repo.stored(res.User.ID)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "Secret123")

	claims, err := svc.JWT.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestSignup_PasswordMismatch(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), "Alice", "a@b.com", "Secret123", "Secret124")
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	_, err := svc.Signup(context.Background(), "Bob", "a@b.com", "Secret123", "Secret123")
	require.Error(t, err)
	assert.Equal(t, apperrors.DuplicateEmail, apperrors.KindOf(err))
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	res, err := svc.Login(context.Background(), "a@b.com", "Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, tc := range [][2]string{{"", "Secret123"}, {"a@b.com", ""}, {"", ""}} {
		_, err := svc.Login(context.Background(), tc[0], tc[1])
		require.Error(t, err)
		assert.Equal(t, apperrors.MissingCredentials, apperrors.KindOf(err))
	}
}

func TestLogin_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	_, errWrongPwd := svc.Login(context.Background(), "a@b.com", "WrongPass1")
	_, errNoUser := svc.Login(context.Background(), "nobody@b.com", "Secret123")

	require.Error(t, errWrongPwd)
	require.Error(t, errNoUser)
	assert.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(errWrongPwd))
	assert.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(errNoUser))
	assert.Equal(t, errWrongPwd.Error(), errNoUser.Error(), "messages must not enable account enumeration")
}

func TestLogin_DeactivatedUser(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")
	require.NoError(t, repo.Deactivate(context.Background(), res.User.ID))

	_, err := svc.Login(context.Background(), "a@b.com", "Secret123")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(err))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@b.com", "http://x/api/v1/users/resetPassword")
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestForgotPassword_PersistsHashAndMailsPlaintext(t *testing.T) {
	svc, repo, notifier, clock := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/api/v1/users/resetPassword"))

	plain := tokenFromBody(t, notifier.lastBody())
	require.NotEmpty(t, plain)

	stored := repo.stored(res.User.ID)
	require.NotNil(t, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.Equal(t, helpers.HashResetToken(plain), *stored.ResetTokenHash, "only the digest is persisted")
	assert.NotEqual(t, plain, *stored.ResetTokenHash)
	assert.Equal(t, clock.Add(10*time.Minute), *stored.ResetTokenExpiry)
}

func TestForgotPassword_NotifierFailureRollsBack(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")
	notifier.fail = true

	err := svc.ForgotPassword(context.Background(), "a@b.com", "http://x/api/v1/users/resetPassword")
	require.Error(t, err)
	assert.Equal(t, apperrors.NotificationFailure, apperrors.KindOf(err))

	stored := repo.stored(res.User.ID)
	assert.Nil(t, stored.ResetTokenHash, "no dangling pending token after delivery failure")
	assert.Nil(t, stored.ResetTokenExpiry)

	// A fresh attempt succeeds once delivery recovers.
	notifier.fail = false
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/api/v1/users/resetPassword"))
}

func TestForgotPassword_SecondCallOverwritesPending(t *testing.T) {
	svc, _, notifier, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	first := tokenFromBody(t, notifier.lastBody())
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	second := tokenFromBody(t, notifier.lastBody())
	require.NotEqual(t, first, second)

	// The first token was superseded.
	_, err := svc.ResetPassword(context.Background(), first, "New12345", "New12345")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidResetToken, apperrors.KindOf(err))

	// The second one redeems.
	_, err = svc.ResetPassword(context.Background(), second, "New12345", "New12345")
	require.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	plain := tokenFromBody(t, notifier.lastBody())

	out, err := svc.ResetPassword(context.Background(), plain, "New12345", "New12345")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)

	stored := repo.stored(res.User.ID)
	assert.Nil(t, stored.ResetTokenHash, "token pair cleared on consumption")
	assert.NotNil(t, stored.PasswordChangedAt)

	// The old password no longer works, the new one does.
	_, err = svc.Login(context.Background(), "a@b.com", "Secret123")
	require.Error(t, err)
	_, err = svc.Login(context.Background(), "a@b.com", "New12345")
	require.NoError(t, err)
}

func TestResetPassword_SingleUse(t *testing.T) {
	svc, _, notifier, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	plain := tokenFromBody(t, notifier.lastBody())

	_, err := svc.ResetPassword(context.Background(), plain, "New12345", "New12345")
	require.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), plain, "Other1234", "Other1234")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidResetToken, apperrors.KindOf(err))
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, notifier, clock := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	plain := tokenFromBody(t, notifier.lastBody())

	*clock = clock.Add(11 * time.Minute) // ttl is 10 minutes

	_, err := svc.ResetPassword(context.Background(), plain, "New12345", "New12345")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidResetToken, apperrors.KindOf(err))
}

func TestResetPassword_ConcurrentRedemption(t *testing.T) {
	svc, _, notifier, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	plain := tokenFromBody(t, notifier.lastBody())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ResetPassword(context.Background(), plain, "New12345", "New12345")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperrors.InvalidResetToken, apperrors.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent redemption wins")
}

func TestResetPassword_UndeliveredTokenIsDead(t *testing.T) {
	svc, _, notifier, _ := newTestService(t)
	mustSignup(t, svc, "a@b.com")

	// Capture what would have been sent, then fail delivery.
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r"))
	delivered := tokenFromBody(t, notifier.lastBody())
	_, err := svc.ResetPassword(context.Background(), delivered, "New12345", "New12345")
	require.NoError(t, err)

	notifier.fail = true
	err = svc.ForgotPassword(context.Background(), "a@b.com", "http://x/r")
	require.Error(t, err)

	// The rolled-back token cannot be redeemed, and neither can the
	// already-consumed one.
	_, err = svc.ResetPassword(context.Background(), delivered, "Again1234", "Again1234")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidResetToken, apperrors.KindOf(err))
}

func TestUpdatePassword(t *testing.T) {
	svc, repo, _, clock := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")
	firstIssued := *clock

	*clock = clock.Add(5 * time.Minute)

	u, err := repo.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	out, err := svc.UpdatePassword(context.Background(), u, "Secret123", "New12345", "New12345")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)

	stored := repo.stored(res.User.ID)
	require.NotNil(t, stored.PasswordChangedAt)
	assert.True(t, stored.ChangedPasswordAfter(firstIssued), "pre-change tokens are invalidated")

	// The token issued by the update itself stays valid.
	claims, err := svc.JWT.Verify(out.Token)
	require.NoError(t, err)
	assert.False(t, stored.ChangedPasswordAfter(claims.IssuedAt))
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")

	u, err := repo.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	_, err = svc.UpdatePassword(context.Background(), u, "WrongPass1", "New12345", "New12345")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(err))
}

func TestUpdatePassword_ConfirmMismatch(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	res := mustSignup(t, svc, "a@b.com")

	u, err := repo.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	_, err = svc.UpdatePassword(context.Background(), u, "Secret123", "New12345", "New12346")
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
}
