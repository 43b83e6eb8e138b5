package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
)

const linkColumns = `id, user_id, title, url, icon, embed_type, sort_order, active,
	scheduled_at, expires_at, published_at, expired_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLink(row rowScanner, extra ...interface{}) (*domain.Link, error) {
	var l domain.Link
	var icon, embedType sql.NullString
	var scheduledAt, expiresAt, publishedAt, expiredAt sql.NullTime

	dest := []interface{}{
		&l.ID, &l.UserID, &l.Title, &l.URL, &icon, &embedType, &l.Order, &l.Active,
		&scheduledAt, &expiresAt, &publishedAt, &expiredAt, &l.CreatedAt, &l.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	l.Icon = stringPtr(icon)
	l.EmbedType = stringPtr(embedType)
	l.ScheduledAt = timePtr(scheduledAt)
	l.ExpiresAt = timePtr(expiresAt)
	l.PublishedAt = timePtr(publishedAt)
	l.ExpiredAt = timePtr(expiredAt)
	return &l, nil
}

func (r *SQLiteRepository) AppendLink(ctx context.Context, link *domain.Link) error {
	// MAX over an empty set is NULL, so the first link of a user gets 0.
	// Reading the max and inserting in one statement keeps concurrent appends
	// from picking the same order.
	query := `INSERT INTO links (user_id, title, url, icon, embed_type, sort_order, active,
				scheduled_at, expires_at, created_at, updated_at)
			  SELECT ?, ?, ?, ?, ?, COALESCE(MAX(sort_order) + 1, 0), ?, ?, ?, ?, ?
			  FROM links WHERE user_id = ?
			  RETURNING id, sort_order`

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		link.UserID, link.Title, link.URL, nullString(link.Icon), nullString(link.EmbedType), link.Active,
		nullTime(link.ScheduledAt), nullTime(link.ExpiresAt), now, now,
		link.UserID,
	).Scan(&link.ID, &link.Order)
	if err != nil {
		return err
	}
	link.CreatedAt = now
	link.UpdatedAt = now
	return nil
}

func (r *SQLiteRepository) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ?`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *SQLiteRepository) UpdateLink(ctx context.Context, link *domain.Link) error {
	query := `UPDATE links SET title = ?, url = ?, icon = ?, embed_type = ?, active = ?,
				scheduled_at = ?, expires_at = ?, published_at = ?, expired_at = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, query,
		link.Title, link.URL, nullString(link.Icon), nullString(link.EmbedType), link.Active,
		nullTime(link.ScheduledAt), nullTime(link.ExpiresAt), nullTime(link.PublishedAt), nullTime(link.ExpiredAt),
		link.UpdatedAt.UTC(), link.ID, link.UserID,
	)
	return err
}

func (r *SQLiteRepository) DeleteLink(ctx context.Context, userID string, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.NotFound("link not found")
	}

	// Foreign keys are not enforced on every driver, so cascade explicitly.
	if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE link_id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// ListLinks returns the user's links in display order with their click counts.
func (r *SQLiteRepository) ListLinks(ctx context.Context, userID string) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + `,
				(SELECT COUNT(*) FROM clicks WHERE clicks.link_id = links.id)
			  FROM links WHERE user_id = ?
			  ORDER BY sort_order ASC, id ASC`
	return r.queryLinks(ctx, query, true, userID)
}

func (r *SQLiteRepository) ListActiveLinks(ctx context.Context, userID string) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links
			  WHERE user_id = ? AND active = 1
			  ORDER BY sort_order ASC, id ASC`
	return r.queryLinks(ctx, query, false, userID)
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY user_id, sort_order`
	return r.queryLinks(ctx, query, false)
}

func (r *SQLiteRepository) queryLinks(ctx context.Context, query string, withClicks bool, args ...interface{}) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var clicks int64
		var extra []interface{}
		if withClicks {
			extra = append(extra, &clicks)
		}
		l, err := scanLink(rows, extra...)
		if err != nil {
			return nil, err
		}
		l.Clicks = clicks
		links = append(links, *l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) ReorderLinks(ctx context.Context, userID string, ids []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM links WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	current := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		current[id] = false
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(ids) != len(current) {
		return domain.Invalid("ids", fmt.Sprintf("expected %d link ids, got %d", len(current), len(ids)))
	}
	for _, id := range ids {
		seen, ok := current[id]
		if !ok {
			return domain.Invalid("ids", fmt.Sprintf("link %d does not belong to the user", id))
		}
		if seen {
			return domain.Invalid("ids", fmt.Sprintf("link %d appears more than once", id))
		}
		current[id] = true
	}

	now := time.Now().UTC()
	stmt, err := tx.PrepareContext(ctx, `UPDATE links SET sort_order = ?, updated_at = ? WHERE id = ? AND user_id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i, now, id, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListScheduleCandidates returns links that may satisfy a publish or expire
// condition at now. The scheduler decides the actual transition.
func (r *SQLiteRepository) ListScheduleCandidates(ctx context.Context, now time.Time) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links
			  WHERE (active = 0 AND scheduled_at IS NOT NULL AND scheduled_at <= ? AND published_at IS NULL
			         AND (expired_at IS NULL OR expires_at IS NULL OR expires_at > ?))
			     OR (active = 1 AND expires_at IS NOT NULL AND expires_at <= ? AND expired_at IS NULL)
			  ORDER BY id ASC`
	now = now.UTC()
	return r.queryLinks(ctx, query, false, now, now, now)
}

func (r *SQLiteRepository) ApplyTransition(ctx context.Context, t domain.Transition) (bool, error) {
	at := t.At.UTC()
	set := []string{"active = ?", "updated_at = ?"}
	args := []interface{}{t.Active(), at}
	where := []string{"id = ?", "active = ?"}
	whereArgs := []interface{}{t.LinkID, t.WasActive}

	if t.StampPublished {
		set = append(set, "published_at = ?")
		args = append(args, at)
		where = append(where, "published_at IS NULL")
	}
	if t.StampExpired {
		set = append(set, "expired_at = ?")
		args = append(args, at)
		where = append(where, "expired_at IS NULL")
	}

	query := `UPDATE links SET ` + strings.Join(set, ", ") + ` WHERE ` + strings.Join(where, " AND ")
	res, err := r.db.ExecContext(ctx, query, append(args, whereArgs...)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
