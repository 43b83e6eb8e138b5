package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
)

// InsertClick appends a click fact. Clicks are never updated or deleted
// individually; the only removal path is deleting the owning link.
func (r *SQLiteRepository) InsertClick(ctx context.Context, click *domain.Click) error {
	query := `INSERT INTO clicks (link_id, user_id, ip, country, city, device, browser, os, referrer, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	click.CreatedAt = click.CreatedAt.UTC()
	res, err := r.db.ExecContext(ctx, query,
		click.LinkID, click.UserID, emptyAsNull(click.IP), emptyAsNull(click.Country), emptyAsNull(click.City),
		emptyAsNull(click.Device), emptyAsNull(click.Browser), emptyAsNull(click.OS), emptyAsNull(click.Referrer),
		click.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	click.ID = id
	return nil
}

// ListClicks loads the user's click facts through the denormalized owner
// column. from is inclusive, to exclusive; nil bounds are open.
func (r *SQLiteRepository) ListClicks(ctx context.Context, userID string, from, to *time.Time) ([]domain.Click, error) {
	query := `SELECT id, link_id, user_id, ip, country, city, device, browser, os, referrer, created_at
			  FROM clicks WHERE user_id = ?`
	args := []interface{}{userID}

	if from != nil {
		query += " AND created_at >= ?"
		args = append(args, from.UTC())
	}
	if to != nil {
		query += " AND created_at < ?"
		args = append(args, to.UTC())
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := []domain.Click{}
	for rows.Next() {
		var c domain.Click
		var ip, country, city, device, browser, os, referrer sql.NullString
		if err := rows.Scan(&c.ID, &c.LinkID, &c.UserID, &ip, &country, &city, &device, &browser, &os, &referrer, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.IP = ip.String
		c.Country = country.String
		c.City = city.String
		c.Device = device.String
		c.Browser = browser.String
		c.OS = os.String
		c.Referrer = referrer.String
		c.CreatedAt = c.CreatedAt.UTC()
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func emptyAsNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
