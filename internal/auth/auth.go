// Package auth handles signup, login, and bearer token verification.
// Tokens are HS256 JWTs carrying the user id and email; passwords are
// stored as bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

// Service issues and verifies credentials.
type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds an auth service with the given signing secret and
// token lifetime.
func NewService(st *store.Store, secret string, ttl time.Duration) *Service {
	return &Service{store: st, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SignupRequest registers a new account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the payload handed back after signup or login.
type Session struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Claims is the JWT payload.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Signup registers a user and returns a fresh session.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return nil, apperr.Validation("email, password, and username are required")
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	userID, err := s.store.CreateUser(ctx, req.Email, string(hash), req.Username)
	if err != nil {
		return nil, apperr.Internal(err, "failed to create user")
	}

	token, err := s.issueToken(userID, req.Email)
	if err != nil {
		return nil, apperr.Internal(err, "failed to sign token")
	}
	return &Session{UserID: userID, Email: req.Email, Username: req.Username, Token: token}, nil
}

// Login verifies credentials and returns a fresh session. Wrong email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Authentication("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.Authentication("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Authorization("account is disabled")
	}
	if !user.EmailVerified {
		return nil, apperr.Authorization("email not verified")
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, apperr.Internal(err, "failed to record login")
	}

	token, err := s.issueToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err, "failed to sign token")
	}
	return &Session{UserID: user.ID, Email: user.Email, Username: user.Username, Token: token}, nil
}

// VerifyToken parses and validates a bearer token, returning its
// claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperr.Authentication("invalid or expired token")
	}
	return claims, nil
}

func (s *Service) issueToken(userID int64, email string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
