package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/ctxutil"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type LoginResult struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// SetContextFromToken validates a signed token and attaches the caller's
	// identity to the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// EnsureBootstrapUser creates the initial operator account when the
	// user table is empty. Idempotent.
	EnsureBootstrapUser(ctx context.Context, email, name, password string) error
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		db:        db,
		log:       baseLog.With("service", "AuthService"),
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apierr.Validation("email and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid credentials")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierr.Unauthorized("unexpected signing method %q", t.Method.Alg())
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierr.Unauthorized("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apierr.Unauthorized("invalid token subject")
	}
	email, _ := claims["email"].(string)
	return ctxutil.WithUserData(ctx, &ctxutil.UserData{UserID: userID, Email: email}), nil
}

func (s *authService) EnsureBootstrapUser(ctx context.Context, email, name, password string) error {
	if email == "" || password == "" {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.GetByEmail(ctx, tx, email); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		s.log.Info("Creating bootstrap user", "email", email)
		return s.userRepo.Create(ctx, tx, &types.User{
			Email:        email,
			Name:         name,
			PasswordHash: string(hash),
		})
	})
}
