package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tienda/internal/api"
	"tienda/internal/models"
	"tienda/internal/session"

	"github.com/go-playground/validator/v10"
)

// AuthService drives login and registration against the backend and keeps
// the session store in sync. Passwords travel to the backend as given;
// hashing and verification are its responsibility.
type AuthService struct {
	client   api.Doer
	sessions *session.Store
	validate *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(client api.Doer, sessions *session.Store) *AuthService {
	return &AuthService{
		client:   client,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Login authenticates against the backend and persists the returned
// identity and bearer token as the active session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	payload := map[string]string{"username": username, "password": password}

	var resp models.LoginResponse
	if err := s.client.Do(ctx, http.MethodPost, "/usuarios/login", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}

	if err := s.sessions.Login(resp.User, resp.Token); err != nil {
		return nil, err
	}
	user := resp.User
	user.Password = ""
	return &user, nil
}

// Register creates a new account. The caller logs in separately afterwards.
func (s *AuthService) Register(ctx context.Context, user models.User) (*models.User, error) {
	if strings.TrimSpace(user.Password) == "" {
		return nil, fmt.Errorf("a password is required to register")
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("invalid registration data: %w", err)
	}

	var created models.User
	if err := s.client.Do(ctx, http.MethodPost, "/usuarios/registrar", user, &created); err != nil {
		return nil, err
	}
	created.Password = ""
	return &created, nil
}

// Logout clears the active session.
func (s *AuthService) Logout() error {
	return s.sessions.Logout()
}

// Current returns the logged-in identity, or nil.
func (s *AuthService) Current() *models.User {
	return s.sessions.Current()
}
