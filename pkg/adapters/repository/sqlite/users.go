package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
)

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_-]+`)

const userColumns = `id, email, username, display_name, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var displayName sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &displayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.DisplayName = displayName.String
	return &u, nil
}

// UpsertUser returns the user registered under email, creating it with a
// unique username derived from the email's local part on first login.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, email, displayName string) (*domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == nil {
		if displayName != "" && displayName != user.DisplayName {
			if _, err := tx.ExecContext(ctx, `UPDATE users SET display_name = ? WHERE id = ?`, displayName, user.ID); err != nil {
				return nil, err
			}
			user.DisplayName = displayName
		}
		return user, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	base := baseUsername(email)
	username := base
	for i := 2; ; i++ {
		var taken int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&taken); err != nil {
			return nil, err
		}
		if taken == 0 {
			break
		}
		username = fmt.Sprintf("%s-%d", base, i)
	}

	user = &domain.User{
		ID:          uuid.New().String(),
		Email:       email,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO users (id, email, username, display_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.DisplayName, user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return user, tx.Commit()
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, strings.ToLower(username)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func baseUsername(email string) string {
	local := strings.ToLower(email)
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	local = strings.Trim(usernameUnsafe.ReplaceAllString(local, "-"), "-")
	if local == "" {
		local = "user"
	}
	return local
}
