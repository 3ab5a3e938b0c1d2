// Package auth registers and signs in users and issues bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"storefront/models"
	"storefront/store"
	"storefront/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	users store.Users
	jwt   *utils.JWT
	cost  int
}

type Option func(*Service)

// WithCost sets the bcrypt cost used for new passwords.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(users store.Users, jwt *utils.JWT, opts ...Option) *Service {
	s := &Service{users: users, jwt: jwt, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates an account and signs it in. Invalid input yields a
// *utils.ValidationError; a taken email yields store.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return models.AuthResponse{}, err
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return models.AuthResponse{}, err
	}

	u := &models.User{Email: req.Email, Password: hash, FullName: req.FullName}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return models.AuthResponse{}, err
	}

	return s.issue(u)
}

// Login checks the credentials. An unknown email and a wrong password both
// yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return models.AuthResponse{}, err
	}

	u, ok, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if !ok {
		return models.AuthResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return models.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(u)
}

// Me returns the account behind a verified token subject.
func (s *Service) Me(ctx context.Context, userID string) (models.PublicUser, bool, error) {
	u, ok, err := s.users.UserByID(ctx, userID)
	if err != nil || !ok {
		return models.PublicUser{}, false, err
	}
	return u.Public(), true, nil
}

func (s *Service) issue(u *models.User) (models.AuthResponse, error) {
	token, err := s.jwt.GenerateJWTToken(u.ID, u.Email)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return models.AuthResponse{User: u.Public(), Token: token}, nil
}
