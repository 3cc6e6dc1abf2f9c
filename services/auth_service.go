package services

import (
	goerrors "errors"
	"fmt"

	"downtime-tracker/auth"
	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

type IAuthService interface {
	Login(email, password string) (Token, domain.User, error)
	Register(email, name string, role domain.Role, password string) (domain.User, error)
	Logout(token string) error
}

type AuthService struct {
	users    repositories.IUserRepository
	sessions *auth.SessionManager
}

type Token string

func NewAuthService(users repositories.IUserRepository, sessions *auth.SessionManager) IAuthService {
	return &AuthService{users: users, sessions: sessions}
}

func (s *AuthService) Login(email, password string) (Token, domain.User, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Email: email, Password: password}); err != nil {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	// Generic error on every failure path to prevent user enumeration.
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return Token(token), user, nil
}

// Register creates an account. Role assignment is restricted to admins at
// the API layer; the service only validates shape and complexity.
func (s *AuthService) Register(email, name string, role domain.Role, password string) (domain.User, error) {
	req := auth.RegisterRequest{Email: email, Name: name, Role: string(role), Password: password}
	if err := auth.ValidateRegister(req); err != nil {
		if goerrors.Is(err, errors.ErrInvalidPassword) {
			return domain.User{}, err
		}
		// Shape failures (bad email, short name) are not password problems.
		return domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.User{}, err
	}

	// Hashing happens here so the repository never sees a plain password.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	return s.users.CreateUser(email, name, role, hash)
}

func (s *AuthService) Logout(token string) error {
	return s.sessions.Revoke(token)
}
