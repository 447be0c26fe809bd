// Package users implements the user directory: a sqlx-backed registry of
// everyone who talked to the bot, including their admin flag consumed by
// routing filters.
package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"dialogbot/core/logger"
	"log/slog"
)

// User is a Telegram user known to the bot.
type User struct {
	ID        int64          `db:"id"`
	FirstName string         `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Username  sql.NullString `db:"username"`
	IsAdmin   bool           `db:"is_admin"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// FullName joins first and last name, falling back to "-".
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName.String)
	if name == "" {
		return "-"
	}
	return name
}

// Mention renders an HTML link to the user.
func (u User) Mention() string {
	return fmt.Sprintf("<a href='tg://user?id=%d'>%s</a>", u.ID, u.FullName())
}

// Service provides user directory operations over the database.
type Service struct {
	db *sqlx.DB
}

// NewService constructs a Service on top of an open database handle.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// ResolveOrCreate upserts the sender's profile and returns the stored record.
// The admin flag is never downgraded by an upsert.
func (s *Service) ResolveOrCreate(ctx context.Context, tu *tele.User) (User, error) {
	if tu == nil {
		return User{}, fmt.Errorf("users: nil telegram user")
	}

	const query = `
		INSERT INTO users (id, first_name, last_name, username)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			username   = EXCLUDED.username,
			updated_at = now()
		RETURNING id, first_name, last_name, username, is_admin, created_at, updated_at`

	var u User
	err := s.db.GetContext(ctx, &u, query, tu.ID, tu.FirstName, tu.LastName, tu.Username)
	if err != nil {
		logger.Users.Error("upsert failed",
			slog.String("event", "users.upsert"),
			slog.Int64("user_id", tu.ID),
			slog.String("err", err.Error()),
		)
		return User{}, fmt.Errorf("users upsert: %w", err)
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, first_name, last_name, username, is_admin, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	if err != nil {
		return User{}, fmt.Errorf("users get: %w", err)
	}
	return u, nil
}

// GetByUsername returns a user by username (case-insensitive, no @ prefix).
func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, first_name, last_name, username, is_admin, created_at, updated_at
		 FROM users WHERE lower(username) = lower($1)`, username)
	if err != nil {
		return User{}, fmt.Errorf("users get by username: %w", err)
	}
	return u, nil
}

// SetAdmin grants or revokes the admin flag.
func (s *Service) SetAdmin(ctx context.Context, id int64, admin bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_admin = $2, updated_at = now() WHERE id = $1`, id, admin)
	if err != nil {
		return fmt.Errorf("users set admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	logger.Users.Info("admin flag updated",
		slog.String("event", "users.set_admin"),
		slog.Int64("user_id", id),
		slog.Bool("is_admin", admin),
	)
	return nil
}

// ListIDs returns the ids of every known user, for broadcasts.
func (s *Service) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("users list ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of known users.
func (s *Service) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM users`); err != nil {
		return 0, fmt.Errorf("users count: %w", err)
	}
	return n, nil
}

// Page returns one page of user summaries, newest first.
func (s *Service) Page(ctx context.Context, page, size int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 5
	}
	var list []User
	err := s.db.SelectContext(ctx, &list,
		`SELECT id, first_name, last_name, username, is_admin, created_at, updated_at
		 FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("users page: %w", err)
	}
	out := make([]string, 0, len(list))
	for _, u := range list {
		line := u.FullName()
		if u.Username.Valid {
			line += " (@" + u.Username.String + ")"
		}
		if u.IsAdmin {
			line += " [admin]"
		}
		out = append(out, line)
	}
	return out, nil
}
