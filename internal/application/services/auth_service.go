package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/config"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

// Claims represents the JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService is the identity stand-in: it issues a signed token naming an
// existing, active user. There are no credentials involved.
type AuthService struct {
	store     ports.Store
	jwtConfig config.JWTConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(store ports.Store, jwtConfig config.JWTConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		store:     store,
		jwtConfig: jwtConfig,
		logger:    logger.WithComponent("auth_service"),
		now:       time.Now,
	}
}

// IssueToken returns an access token for the named user and records the login
func (s *AuthService) IssueToken(ctx context.Context, req ports.TokenRequest) (*ports.TokenResponse, error) {
	user, err := s.store.Users().GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			s.logger.Warnw("Token requested for unknown user", "username", req.Username)
		}
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if !user.Active {
		s.logger.LogSecurityEvent("inactive_user_token", user.ID.String(), "", nil)
		return nil, entities.ErrUserInactive
	}

	now := s.now()
	if err := s.store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	accessToken, err := s.generateAccessToken(user, now)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Token issued", "user_id", user.ID, "username", user.Username)

	return &ports.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtConfig.ExpiresIn.Seconds()),
		User:        user,
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, entities.ErrInvalidToken
	}

	return &ports.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}

func (s *AuthService) generateAccessToken(user *entities.User, now time.Time) (string, error) {
	claims := &Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
