package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finbooks/internal/domain"
	"finbooks/internal/infrastructure/metrics"
	"finbooks/internal/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and JWT issuance.
type AuthService struct {
	users    ports.UserRepository
	secret   []byte
	validity time.Duration
	clock    ports.Clock
	logger   zerolog.Logger
}

// Claims is the JWT payload carried in access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService creates the auth service.
func NewAuthService(users ports.UserRepository, secret string, validity time.Duration, clock ports.Clock, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		validity: validity,
		clock:    clock,
		logger:   logger,
	}
}

// Register creates a user with a bcrypt-hashed password. Duplicate emails
// fail with domain.ErrAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies credentials and returns the user plus a signed JWT. Bad
// credentials and inactive accounts both surface as ErrUnauthorized so the
// response does not reveal which one failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.Logins.WithLabelValues("denied").Inc()
		return nil, "", domain.ErrUnauthorized
	}
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, "", err
	}

	if !user.IsActive {
		metrics.Logins.WithLabelValues("denied").Inc()
		return nil, "", domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.Logins.WithLabelValues("denied").Inc()
		return nil, "", domain.ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, "", err
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	return user, token, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// UserFromToken validates a bearer token and loads the user it names.
// Expired or tampered tokens and inactive users surface as ErrUnauthorized.
func (s *AuthService) UserFromToken(ctx context.Context, tokenString string) (*domain.User, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
