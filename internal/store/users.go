package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuihold/internal/model"
)

const (
	// GuestUsername is selected when no user was chosen before.
	GuestUsername = "guest"

	metaLastUserID = "last_user_id"
)

// EnsureUser returns the user with the given name, creating it if missing.
func (s *Store) EnsureUser(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, errors.New("username must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?) ON CONFLICT(username) DO NOTHING`,
		username, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return model.User{}, err
	}
	return s.FindUserByName(ctx, username)
}

// FindUserByName looks a user up by name.
func (s *Store) FindUserByName(ctx context.Context, username string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// CurrentUser restores the last selected user. Without one, the guest user
// is created and selected.
func (s *Store) CurrentUser(ctx context.Context) (model.User, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_meta WHERE key = ?`, metaLastUserID).Scan(&value)
	switch {
	case err == nil:
		if id, perr := strconv.ParseInt(value, 10, 64); perr == nil {
			user, ferr := s.FindUserByID(ctx, id)
			if ferr == nil {
				return user, nil
			}
			if !errors.Is(ferr, ErrNotFound) {
				return model.User{}, ferr
			}
		}
	case !errors.Is(err, sql.ErrNoRows):
		return model.User{}, err
	}

	user, err := s.EnsureUser(ctx, GuestUsername)
	if err != nil {
		return model.User{}, err
	}
	if err := s.SetCurrentUser(ctx, user.ID); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// SetCurrentUser remembers the selected user for the next run.
func (s *Store) SetCurrentUser(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaLastUserID, strconv.FormatInt(id, 10))
	return err
}

func scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	var createdAt string
	if err := row.Scan(&user.ID, &user.Username, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.User{}, err
	}
	user.CreatedAt = parsed
	return user, nil
}
