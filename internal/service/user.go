package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/yanex66/vouchly/internal/auth"
	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username may contain only letters, digits and @/./+/-/_")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidImage       = errors.New("invalid profile image")
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

const minPasswordLength = 8

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Session is an issued access token.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type UserService struct {
	repo        *repository.Repository
	issuer      *auth.Issuer
	bcryptCost  int
	referralSvc *ReferralService
}

func NewUserService(repo *repository.Repository, cfg config.AuthConfig) *UserService {
	return &UserService{
		repo:       repo,
		issuer:     auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		bcryptCost: cfg.BcryptCost,
	}
}

// SetReferralService sets the referral service (to avoid circular deps)
func (s *UserService) SetReferralService(referralSvc *ReferralService) {
	s.referralSvc = referralSvc
}

func (s *UserService) Issuer() *auth.Issuer {
	return s.issuer
}

// Register creates the user and profile, then attributes the signup to
// referralCode. Referral problems never fail the registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput, referralCode string) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if referralCode != "" && s.referralSvc != nil {
		if err := s.referralSvc.RecordSignup(ctx, referralCode, user.ID); err != nil {
			logger.Log.Warn("signup referral not recorded",
				zap.Int64("user_id", user.ID), zap.String("code", referralCode), zap.Error(err))
		}
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.issuer.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateProfileImage stores the image reference. Uploads are handled elsewhere;
// only a relative file name is accepted here.
func (s *UserService) UpdateProfileImage(ctx context.Context, userID int64, image string) (*model.Profile, error) {
	image = strings.TrimSpace(image)
	if image == "" || len(image) > 255 || strings.Contains(image, "..") || strings.HasPrefix(image, "/") {
		return nil, ErrInvalidImage
	}
	if err := s.repo.UpdateProfileImage(ctx, userID, image); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, userID)
}
