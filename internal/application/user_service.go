package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
)

const identityTTL = 24 * time.Hour

// Identity is the resolved caller attached to protected requests. It is
// what the auth gate hands downstream; handlers never re-read the store
// for "who am I" style lookups.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserService covers registration, login and identity resolution.
type UserService struct {
	Repo   repository.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Redis: rdb, Logger: logger}
}

func identityKey(userID string) string {
	return "user:identity:" + userID
}

// Register creates a user with a bcrypt-hashed password and issues a token.
// A duplicate email fails with ErrEmailTaken before anything is persisted.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*entity.User, string, time.Time, error) {
	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", time.Time{}, ErrEmailTaken
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		// a concurrent registration can slip past the pre-check and lose
		// the race against the unique constraint
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", time.Time{}, ErrEmailTaken
		}
		return nil, "", time.Time{}, fmt.Errorf("create user: %w", err)
	}

	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.cacheIdentity(ctx, u)
	return u, token, exp, nil
}

// Login verifies credentials and issues a fresh token. Unknown email and
// wrong password are indistinguishable to the caller; a failing store is
// neither and surfaces as its own error.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, fmt.Errorf("fetch user: %w", err)
	}
	if !helpers.CheckPassword(u.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.cacheIdentity(ctx, u)
	return u, token, exp, nil
}

// Resolve maps a verified user id to a full identity, trying the Redis
// cache first and falling back to the record store on a miss.
func (s *UserService) Resolve(ctx context.Context, userID string) (*Identity, error) {
	if s.Redis != nil {
		var id Identity
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, identityKey(userID), &id); err == nil && ok {
			return &id, nil
		}
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	s.cacheIdentity(ctx, u)
	return identityOf(u), nil
}

func (s *UserService) cacheIdentity(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, identityKey(u.ID), identityOf(u), identityTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("identity cache write failed")
	}
}

func identityOf(u *entity.User) *Identity {
	return &Identity{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}
