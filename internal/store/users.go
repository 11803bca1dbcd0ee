package store

import (
	"context"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateUser inserts a user. A taken email surfaces as a unique violation.
func (d *DB) CreateUser(ctx context.Context, u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = d.now()
	}
	_, err := d.exec(ctx, d.Pool, `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?);`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC().Format(tsLayout))
	return wrap("create user", err)
}

func (d *DB) UserByEmail(ctx context.Context, email string) (User, error) {
	var (
		u  User
		at string
	)
	err := d.queryRow(ctx, d.Pool, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?;`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &at)
	if err != nil {
		return User{}, wrap("user by email", err)
	}
	u.CreatedAt = parseStamp(at)
	return u, nil
}

func (d *DB) CreateSession(ctx context.Context, s Session) error {
	_, err := d.exec(ctx, d.Pool, `INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?);`,
		s.Token, s.UserID, s.CreatedAt.UTC().Format(tsLayout), s.ExpiresAt.UTC().Format(tsLayout))
	return wrap("create session", err)
}

// SessionUser resolves an unexpired session token to its user.
func (d *DB) SessionUser(ctx context.Context, token string) (User, Session, error) {
	var (
		u                User
		s                Session
		userAt, sAt, sEx string
	)
	err := d.queryRow(ctx, d.Pool, `
SELECT u.id, u.email, u.password_hash, u.created_at, s.created_at, s.expires_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token = ? AND s.expires_at > ?;`, token, d.stamp()).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &userAt, &sAt, &sEx)
	if err != nil {
		return User{}, Session{}, wrap("session user", err)
	}
	u.CreatedAt = parseStamp(userAt)
	s = Session{Token: token, UserID: u.ID, CreatedAt: parseStamp(sAt), ExpiresAt: parseStamp(sEx)}
	return u, s, nil
}

func (d *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := d.exec(ctx, d.Pool, `DELETE FROM sessions WHERE token = ?;`, token)
	return wrap("delete session", err)
}

// DeleteExpiredSessions prunes sessions past their expiry.
func (d *DB) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := d.exec(ctx, d.Pool, `DELETE FROM sessions WHERE expires_at <= ?;`, d.stamp())
	if err != nil {
		return 0, wrap("delete expired sessions", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
