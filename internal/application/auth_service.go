package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/apperrors"
	"github.com/showbase/showbase/pkg/helpers"
	"github.com/showbase/showbase/pkg/mailer"
)

// AuthService orchestrates signup, login and the password lifecycle. It is
// the only writer of credential fields.
type AuthService struct {
	Repo     repository.UserRepository
	Hasher   *helpers.PasswordHasher
	JWT      *helpers.JWTManager
	Notifier mailer.Notifier
	Queue    *helpers.RabbitPublisher // optional, best-effort notifications
	Logger   *logrus.Logger
	ResetTTL time.Duration

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewAuthService(repo repository.UserRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, notifier mailer.Notifier, queue *helpers.RabbitPublisher, logger *logrus.Logger, resetTTL time.Duration) *AuthService {
	return &AuthService{
		Repo:     repo,
		Hasher:   hasher,
		JWT:      jwt,
		Notifier: notifier,
		Queue:    queue,
		Logger:   logger,
		ResetTTL: resetTTL,
		Now:      time.Now,
	}
}

// AuthResult is a principal plus a freshly issued bearer token.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) issueToken(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.Issue(u.ID, s.Now())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not issue token", err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Signup registers a new user with role "user" and logs them in.
func (s *AuthService) Signup(ctx context.Context, name, email, password, passwordConfirm string) (*AuthResult, error) {
	if password != passwordConfirm {
		return nil, apperrors.New(apperrors.Validation, "passwords are not the same")
	}
	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Name:         name,
		Email:        entity.NormalizeEmail(email),
		Role:         entity.RoleUser,
		PasswordHash: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.New(apperrors.DuplicateEmail, "email is already registered")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not create user", err)
	}

	s.notifyAsync(ctx, u.Email, "Welcome to TV-Series DB",
		fmt.Sprintf("Hi %s, your account is ready.", u.Name))

	return s.issueToken(u)
}

// Login authenticates by email and password. A missing account and a wrong
// password are deliberately indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.New(apperrors.MissingCredentials, "please enter email and password")
	}
	u, err := s.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.InvalidCredentials, "incorrect email or password")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not look up user", err)
	}
	ok, err := s.Hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not verify password", err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.InvalidCredentials, "incorrect email or password")
	}
	return s.issueToken(u)
}

// ForgotPassword issues a one-time reset token and mails its plaintext to
// the user. When delivery fails the persisted pair is rolled back so no
// undeliverable token stays live. resetURLBase is the route prefix the
// plaintext gets appended to.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	if email == "" {
		return apperrors.New(apperrors.MissingCredentials, "please enter your email")
	}
	u, err := s.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "there is no user with this email")
		}
		return apperrors.Wrap(apperrors.Internal, "could not look up user", err)
	}

	tok, err := helpers.NewResetToken(s.Now(), s.ResetTTL)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "could not generate reset token", err)
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, tok.Hash, tok.Expiry); err != nil {
		return apperrors.Wrap(apperrors.Internal, "could not store reset token", err)
	}

	body := fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s/%s\nIf you didn't forget your password, please ignore this email!",
		resetURLBase, tok.Plaintext)
	if err := s.Notifier.Send(ctx, u.Email, "Your password reset token (valid for 10 mins)", body); err != nil {
		// Roll back, conditionally on the hash this request wrote.
		if clearErr := s.Repo.ClearResetToken(ctx, u.ID, tok.Hash); clearErr != nil && s.Logger != nil {
			s.Logger.WithError(clearErr).WithField("user_id", u.ID).Error("reset token rollback failed")
		}
		return apperrors.Wrap(apperrors.NotificationFailure, "there was an error sending the email, try again later", err)
	}
	return nil
}

// ResetPassword redeems a reset-token plaintext for a new password. The
// lookup-and-clear is one conditional update in the store, so the token is
// single-use even under concurrent redemption.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) (*AuthResult, error) {
	if password != passwordConfirm {
		return nil, apperrors.New(apperrors.Validation, "passwords are not the same")
	}
	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	// Backdate by a second so the fresh token's iat is never before the
	// recorded change.
	u, err := s.Repo.ConsumeResetToken(ctx, helpers.HashResetToken(plainToken), hash, now, now.Add(-time.Second))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.InvalidResetToken, "invalid or expired reset token")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not reset password", err)
	}

	s.notifyAsync(ctx, u.Email, "Your password was changed",
		"Your TV-Series DB password was just reset. If this wasn't you, contact support immediately.")

	return s.issueToken(u)
}

// UpdatePassword changes the password of an already-authenticated user.
func (s *AuthService) UpdatePassword(ctx context.Context, u *entity.User, currentPassword, password, passwordConfirm string) (*AuthResult, error) {
	ok, err := s.Hasher.Verify(ctx, currentPassword, u.PasswordHash)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not verify password", err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.InvalidCredentials, "wrong current password")
	}
	if password != passwordConfirm {
		return nil, apperrors.New(apperrors.Validation, "passwords are not the same")
	}
	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	changedAt := s.Now().Add(-time.Second)
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not update password", err)
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt

	s.notifyAsync(ctx, u.Email, "Your password was changed",
		"Your TV-Series DB password was just updated. If this wasn't you, contact support immediately.")

	return s.issueToken(u)
}

// notifyAsync enqueues a best-effort notification email. Failures are logged
// and never affect the calling flow.
func (s *AuthService) notifyAsync(ctx context.Context, to, subject, body string) {
	if s.Queue == nil {
		return
	}
	job := mailer.EmailJob{To: to, Subject: subject, Body: body}
	if err := s.Queue.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", to).Warn("email enqueue failed")
	}
}
