package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"internhunt-engine/internal/events"
	"internhunt-engine/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 6

var (
	ErrAlreadyRegistered  = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNoSession          = errors.New("no active session")
)

// Message returns the text shown to the person signing in for err.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return "This email is already registered. Please sign in instead."
	case errors.Is(err, ErrWeakPassword):
		return fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLen)
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password. Please check your credentials and try again."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrNoSession):
		return "Please sign in to continue."
	case err == nil:
		return ""
	default:
		return "An unexpected error occurred. Please try again."
	}
}

type Store interface {
	CreateUser(ctx context.Context, u store.User) error
	UserByEmail(ctx context.Context, email string) (store.User, error)
	CreateSession(ctx context.Context, s store.Session) error
	SessionUser(ctx context.Context, token string) (store.User, store.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type Service struct {
	Store Store
	Hub   *events.Hub
	TTL   time.Duration

	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || !strings.Contains(e[strings.LastIndex(e, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return e, nil
}

// SignUp registers a user and opens a session for them.
func (s *Service) SignUp(ctx context.Context, email, password string) (store.User, store.Session, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return store.User{}, store.Session{}, err
	}
	if len(password) < MinPasswordLen {
		return store.User{}, store.Session{}, ErrWeakPassword
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return store.User{}, store.Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := store.User{
		ID:           uuid.NewString(),
		Email:        e,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		if store.IsUniqueViolation(err) {
			return store.User{}, store.Session{}, ErrAlreadyRegistered
		}
		return store.User{}, store.Session{}, err
	}
	log.Info().Str("stage", "auth").Str("user_id", u.ID).Msg("user registered")

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return store.User{}, store.Session{}, err
	}
	return u, sess, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (store.User, store.Session, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return store.User{}, store.Session{}, ErrInvalidCredentials
	}
	u, err := s.Store.UserByEmail(ctx, e)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, store.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, store.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return store.User{}, store.Session{}, ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return store.User{}, store.Session{}, err
	}
	return u, sess, nil
}

// SignOut ends the session. Unknown or expired tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	u, _, err := s.Store.SessionUser(ctx, token)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := s.Store.DeleteSession(ctx, token); err != nil {
		return err
	}
	if u.ID != "" {
		s.Hub.Publish(events.MakeEvent(events.RequestID(ctx), events.TypeSignedOut, 1, nil).ForUser(u.ID))
		log.Info().Str("stage", "auth").Str("user_id", u.ID).Msg("signed out")
	}
	return nil
}

// CurrentUser resolves a session token.
func (s *Service) CurrentUser(ctx context.Context, token string) (store.User, error) {
	if strings.TrimSpace(token) == "" {
		return store.User{}, ErrNoSession
	}
	u, _, err := s.Store.SessionUser(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, ErrNoSession
	}
	return u, err
}

func (s *Service) openSession(ctx context.Context, u store.User) (store.Session, error) {
	token, err := newToken()
	if err != nil {
		return store.Session{}, err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	now := s.now()
	sess := store.Session{Token: token, UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	if err := s.Store.CreateSession(ctx, sess); err != nil {
		return store.Session{}, err
	}
	s.Hub.Publish(events.MakeEvent(events.RequestID(ctx), events.TypeSignedIn, 1, map[string]string{"email": u.Email}).ForUser(u.ID))
	return sess, nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
