package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"internhunt-engine/internal/events"
	"internhunt-engine/internal/store"

	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(store.DialectSQLite, filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return &Service{Store: db, Hub: events.NewHub(), TTL: time.Hour, Cost: bcrypt.MinCost}
}

func TestSignUpSignInSignOut(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	u, sess, err := s.SignUp(ctx, "  Ada@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Email != "ada@example.com" || u.ID == "" || sess.Token == "" {
		t.Fatalf("user=%+v session=%+v", u, sess)
	}
	if u.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear")
	}

	got, err := s.CurrentUser(ctx, sess.Token)
	if err != nil || got.ID != u.ID {
		t.Fatalf("CurrentUser = %+v, %v", got, err)
	}

	_, sess2, err := s.SignIn(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess2.Token == sess.Token {
		t.Fatalf("each sign-in should mint a new token")
	}

	if err := s.SignOut(ctx, sess2.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := s.CurrentUser(ctx, sess2.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("signed-out token still valid: %v", err)
	}
	// the first session is independent
	if _, err := s.CurrentUser(ctx, sess.Token); err != nil {
		t.Fatalf("first session: %v", err)
	}
	if err := s.SignOut(ctx, "unknown"); err != nil {
		t.Fatalf("unknown token sign-out: %v", err)
	}
}

func TestSignUpErrors(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	if _, _, err := s.SignUp(ctx, "ada@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
		message  string
	}{
		{"duplicate", "ADA@example.com", "another1", ErrAlreadyRegistered, "This email is already registered. Please sign in instead."},
		{"short password", "bob@example.com", "12345", ErrWeakPassword, "Password must be at least 6 characters long."},
		{"bad email", "not-an-email", "secret1", ErrInvalidEmail, "Please enter a valid email address."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.SignUp(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if Message(err) != tt.message {
				t.Fatalf("message = %q", Message(err))
			}
		})
	}
}

func TestSignInRejects(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	if _, _, err := s.SignUp(ctx, "ada@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	for _, c := range [][2]string{{"ada@example.com", "wrong-pass"}, {"nobody@example.com", "secret1"}, {"junk", "secret1"}} {
		_, _, err := s.SignIn(ctx, c[0], c[1])
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("SignIn(%q) = %v", c[0], err)
		}
	}
	if Message(ErrInvalidCredentials) != "Invalid email or password. Please check your credentials and try again." {
		t.Fatalf("message = %q", Message(ErrInvalidCredentials))
	}
}

func TestCurrentUserWithoutToken(t *testing.T) {
	s := newService(t)
	if _, err := s.CurrentUser(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v", err)
	}
}

func TestSessionsExpire(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	s.TTL = time.Millisecond
	s.Now = func() time.Time { return time.Now().Add(-time.Hour) }

	_, sess, err := s.SignUp(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CurrentUser(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired session resolved: %v", err)
	}
}

func TestAuthEventsAreScoped(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	other := s.Hub.Subscribe("someone-else")
	defer s.Hub.Unsubscribe(other)

	u, sess, err := s.SignUp(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	mine := s.Hub.Subscribe(u.ID)
	defer s.Hub.Unsubscribe(mine)

	if err := s.SignOut(ctx, sess.Token); err != nil {
		t.Fatal(err)
	}
	if e := <-mine; e.Type != events.TypeSignedOut {
		t.Fatalf("event = %s", e.Type)
	}
	if len(other) != 0 {
		t.Fatalf("another subscriber saw %d auth events", len(other))
	}
}
