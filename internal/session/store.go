// Package session keeps the authenticated identity for the lifetime of the
// client and persists it in a local sqlite database so a restart does not
// force a new login.
package session

import (
	"fmt"
	"sync"

	"tienda/internal/models"

	"github.com/dgrijalva/jwt-go"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// credential is the single persisted login record.
type credential struct {
	ID       uint `gorm:"primaryKey"`
	UserID   int
	Username string
	Email    string
	Token    string
}

func (credential) TableName() string {
	return "credentials"
}

// Store exposes the current identity plus the login and logout operations.
// Safe for concurrent use.
type Store struct {
	db    *gorm.DB
	mu    sync.RWMutex
	user  *models.User
	token string
}

// Open loads (or creates) the session database at path and restores a
// previously saved identity when the stored record is complete and its
// token is structurally a JWT. Expiry is not checked here: a stale token is
// only discovered when the backend rejects it.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&credential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	s := &Store{db: db}

	var cred credential
	if err := db.First(&cred).Error; err == nil {
		if cred.Username != "" && wellFormed(cred.Token) {
			s.user = &models.User{ID: cred.UserID, Username: cred.Username, Email: cred.Email}
			s.token = cred.Token
		}
	}
	return s, nil
}

// wellFormed checks that the token parses as a JWT without verifying the
// signature; verification is the backend's job.
func wellFormed(token string) bool {
	parser := &jwt.Parser{}
	_, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	return err == nil
}

// Login persists the identity and token and makes them the current session.
func (s *Store) Login(user models.User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wipe(); err != nil {
		return err
	}
	cred := credential{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}
	if err := s.db.Create(&cred).Error; err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	user.Password = ""
	s.user = &user
	s.token = token
	return nil
}

// Logout clears the persisted record and resets the in-memory identity.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wipe(); err != nil {
		return err
	}
	s.user = nil
	s.token = ""
	return nil
}

func (s *Store) wipe() error {
	err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&credential{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

// Current returns a copy of the authenticated identity, or nil when nobody
// is logged in.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token of the active session, or "". It is the
// token source wired into the api client.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
