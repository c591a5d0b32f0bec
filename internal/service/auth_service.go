package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/guregu/null.v4"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService handles accounts and token auth.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	ValidateToken(tokenString string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, userID string) (*models.User, error)
}

type authServiceImpl struct {
	users      store.UserStore
	jwtSecret  []byte
	expiration time.Duration
}

// NewAuthService creates an AuthService signing tokens with jwtSecret.
func NewAuthService(users store.UserStore, jwtSecret string, expiration time.Duration) AuthService {
	return &authServiceImpl{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		expiration: expiration,
	}
}

// Signup creates an account with a bcrypt-hashed password and returns a
// signed token. Emails are unique, case-insensitively.
func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	for _, u := range users {
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Username, req.Username) {
			return nil, ErrUserAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    email,
		Phone:    null.NewString(req.Phone, req.Phone != ""),
		Password: string(hash),
		Role:     models.RoleUser,
	}
	users = append(users, user)

	if err := s.users.Save(ctx, users); err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

// Login verifies credentials and returns a signed token.
func (s *authServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if !strings.EqualFold(u.Email, req.Email) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
		return s.authResponse(u)
	}
	return nil, ErrInvalidCredentials
}

// ValidateToken parses and verifies a token and returns the embedded user
// identity. The returned user carries no password hash.
func (s *authServiceImpl) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	username, _ := claims["username"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &models.User{ID: userID, Username: username, Email: email, Role: role}, nil
}

// ListUsers returns all accounts with password hashes blanked.
func (s *authServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeleteUser removes an account and returns the removed record so the
// caller can cascade deletes keyed by its id and email.
func (s *authServiceImpl) DeleteUser(ctx context.Context, userID string) (*models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	var deleted *models.User
	kept := users[:0]
	for _, u := range users {
		if u.ID == userID {
			removed := u
			deleted = &removed
			continue
		}
		kept = append(kept, u)
	}

	if deleted == nil {
		return nil, store.ErrNotFound
	}

	if err := s.users.Save(ctx, kept); err != nil {
		return nil, err
	}

	deleted.Password = ""
	return deleted, nil
}

func (s *authServiceImpl) authResponse(user models.User) (*models.AuthResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"role":     user.Role,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	user.Password = ""
	return &models.AuthResponse{Token: signed, User: user}, nil
}
