package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/apperrors"
	"github.com/showbase/showbase/pkg/helpers"
)

// UserService covers self-service profile updates and the admin-only
// listing. Credential fields are off limits here; those belong to
// AuthService.
type UserService struct {
	Repo      repository.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewUserService(repo repository.UserRepository, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, GCS: gcs, GCSBucket: gcsBucket, Logger: logger}
}

// UpdateMeInput carries the only fields a user may change about themselves.
type UpdateMeInput struct {
	Name  string
	Email string
}

func (s *UserService) UpdateMe(ctx context.Context, u *entity.User, in UpdateMeInput) (*entity.User, error) {
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = entity.NormalizeEmail(in.Email)
	}
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.New(apperrors.DuplicateEmail, "email is already registered")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not update profile", err)
	}
	return u, nil
}

// DeleteMe soft-deletes the account; every subsequent lookup excludes it.
func (s *UserService) DeleteMe(ctx context.Context, userID string) error {
	if err := s.Repo.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "cannot find user with this id")
		}
		return apperrors.Wrap(apperrors.Internal, "could not deactivate user", err)
	}
	return nil
}

// UploadAvatar stores the avatar in GCS and persists its public URL.
func (s *UserService) UploadAvatar(ctx context.Context, u *entity.User, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperrors.New(apperrors.Internal, "avatar storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.ID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "could not upload avatar", err)
	}
	u.AvatarURL = url
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "could not save avatar", err)
	}
	return url, nil
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not list users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "cannot find user with this id")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not load user", err)
	}
	return u, nil
}
