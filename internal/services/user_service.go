package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/storage"
	"github.com/axellelanca/linkshelf/internal/validation"
)

// maxUsernameAttempts bounds the nickname suffix search in FindOrCreate.
const maxUsernameAttempts = 1000

// ProfileUpdate changes the nickname and/or the avatar of the caller. Empty
// fields are left untouched.
type ProfileUpdate struct {
	NewNickname      string `json:"newNickname" validate:"omitempty,max=150"`
	NewUserAvatarURL string `json:"newUserAvatarUrl" validate:"omitempty,url,max=256"`
}

// NicknameCheck is the answer of CheckNickname.
type NicknameCheck struct {
	IsAvailable bool   `json:"is_available"`
	Message     string `json:"message"`
}

// UserService manages local accounts.
type UserService struct {
	users   repository.UserRepository
	tx      repository.TxManager
	tasks   TaskDispatcher
	objects ObjectStorage
}

// NewUserService creates a UserService. objects may be nil.
func NewUserService(users repository.UserRepository, tx repository.TxManager, tasks TaskDispatcher, objects ObjectStorage) *UserService {
	return &UserService{users: users, tx: tx, tasks: tasks, objects: objects}
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, viewer models.Viewer) (*models.UserInfoDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	dto := models.NewUserInfoDTO(*u)
	return &dto, nil
}

// UpdateMe renames the caller and/or replaces the avatar. The previous avatar
// object is removed after the change is committed.
func (s *UserService) UpdateMe(ctx context.Context, viewer models.Viewer, in ProfileUpdate) (*models.UserInfoDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	in.NewNickname = strings.TrimSpace(in.NewNickname)
	if err := validation.ValidateStruct("", in); err != nil {
		return nil, err
	}

	var previous *string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetUserByID(ctx, viewer.UserID)
		if err != nil {
			return err
		}
		if in.NewNickname != "" && in.NewNickname != u.Username {
			taken, err := s.users.UsernameTaken(ctx, in.NewNickname, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: nickname %q is already taken", apperrors.ErrConflict, in.NewNickname)
			}
			if err := s.users.UpdateUsername(ctx, u.ID, in.NewNickname); err != nil {
				return err
			}
		}
		if in.NewUserAvatarURL != "" {
			previous, err = s.users.SetAvatarURL(ctx, u.ID, in.NewUserAvatarURL)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if in.NewUserAvatarURL != "" {
		cleanupReplaced(s.tasks, s.objects, previous, in.NewUserAvatarURL)
	}
	return s.Me(ctx, viewer)
}

// CheckNickname reports whether nickname is free for the caller.
func (s *UserService) CheckNickname(ctx context.Context, viewer models.Viewer, nickname string) (*NicknameCheck, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperrors.ValidationError{Field: "nickname", Reason: "is required"}
	}
	taken, err := s.users.UsernameTaken(ctx, nickname, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if taken {
		return &NicknameCheck{IsAvailable: false, Message: "This nickname is already taken."}, nil
	}
	return &NicknameCheck{IsAvailable: true, Message: "This nickname is available."}, nil
}

// PresignAvatar returns an upload url for an avatar image.
func (s *UserService) PresignAvatar(ctx context.Context, viewer models.Viewer, req UploadRequest) (storage.Upload, error) {
	if err := requireLogin(viewer); err != nil {
		return storage.Upload{}, err
	}
	if err := validation.ValidateStruct("", req); err != nil {
		return storage.Upload{}, err
	}
	if s.objects == nil {
		return storage.Upload{}, errNoObjectStorage
	}
	return s.objects.PresignUpload(ctx, storage.PrefixAvatars, req.FileName, req.FileType)
}

// CreateUser stores a new account with its bookmark and avatar rows.
func (s *UserService) CreateUser(ctx context.Context, username, email string, isStaff bool) (*models.User, error) {
	u := &models.User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email), IsStaff: isStaff}
	if u.Username == "" {
		return nil, apperrors.ValidationError{Field: "username", Reason: "is required"}
	}
	if u.Email == "" {
		return nil, apperrors.ValidationError{Field: "email", Reason: "is required"}
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("User created")
	return u, nil
}

// FindOrCreate returns the account registered with email, creating it from
// the nickname when missing. A taken nickname gets a numeric suffix.
func (s *UserService) FindOrCreate(ctx context.Context, nickname, email string) (*models.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	base := strings.TrimSpace(nickname)
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	username := base
	for i := 1; ; i++ {
		taken, err := s.users.UsernameTaken(ctx, username, 0)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
		if i > maxUsernameAttempts {
			return nil, fmt.Errorf("%w: no free username for %q", apperrors.ErrConflict, base)
		}
		username = base + strconv.Itoa(i)
	}
	return s.CreateUser(ctx, username, email, false)
}
