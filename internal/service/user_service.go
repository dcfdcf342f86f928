package service

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"dealfeed/internal/middleware"
	"dealfeed/internal/models"
	"dealfeed/internal/storage"
)

// UserService handles registration and profile reads.
type UserService struct {
	store         storage.Storage
	usernameLocks *keyedMutex
}

func NewUserService(store storage.Storage) *UserService {
	return &UserService{
		store:         store,
		usernameLocks: newKeyedMutex(),
	}
}

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Username    string  `json:"username" validate:"required,min=3,max=30"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName *string `json:"displayName"`
	Avatar      *string `json:"avatar"`
	Bio         *string `json:"bio"`
}

// Register creates a user with a unique username. Storage itself would
// happily repoint an existing username at a new user, so the existence
// check and the insert run under a per-username lock.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	unlock := s.usernameLocks.lock(in.Username)
	defer unlock()

	existing, err := s.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		return nil, models.NewConflictError("username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:    in.Username,
		Password:    string(hashed),
		DisplayName: in.DisplayName,
		Avatar:      in.Avatar,
		Bio:         in.Bio,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "user registered", slog.String("username", user.Username))
	return user, nil
}

// GetProfile returns a user's profile with live follower counts. When
// viewerID is non-empty the IsFollowing flag reflects the viewer's edge
// toward the profile owner.
func (s *UserService) GetProfile(ctx context.Context, username, viewerID string) (*models.UserProfile, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("user", username)
	}

	followers, err := s.store.ListFollowers(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	following, err := s.store.ListFollowing(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	profile := &models.UserProfile{
		User:           *user,
		FollowersCount: len(followers),
		FollowingCount: len(following),
	}
	if viewerID != "" && viewerID != username {
		isFollowing, err := s.store.IsFollowing(ctx, viewerID, username)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		profile.IsFollowing = isFollowing
	}
	return profile, nil
}
