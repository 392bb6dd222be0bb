// Package sqlrepo implements the URL store on top of any database/sql driver
// supported by sqlx. Queries are written with ? placeholders and rebound to
// the driver's bind style.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hashlink/url-shortener/internal/entity"
)

type urlDB struct {
	ID        int64          `db:"id"`
	ShortURL  string         `db:"short_url"`
	LongURL   string         `db:"long_url"`
	CreatedAt string         `db:"created_at"`
	ExpiresAt sql.NullString `db:"expires_at"`
}

func (u *urlDB) toEntity() (*entity.URL, error) {
	createdAt, err := entity.ParseTimestamp(u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", u.CreatedAt, err)
	}

	url := &entity.URL{
		ID:        u.ID,
		ShortURL:  u.ShortURL,
		LongURL:   u.LongURL,
		CreatedAt: createdAt,
	}

	if u.ExpiresAt.Valid {
		url.ExpiresAt, err = entity.ParseTimestamp(u.ExpiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_at %q: %w", u.ExpiresAt.String, err)
		}
	}

	return url, nil
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Save appends a new row. Rows sharing a short code are allowed.
func (r *URLRepository) Save(ctx context.Context, shortURL, longURL string, createdAt, expiresAt time.Time) (*entity.URL, error) {
	const op = "adapter.repository.sqlrepo.URLRepository.Save"
	const query = `INSERT INTO shorturls (short_url, long_url, created_at, expires_at) VALUES (?, ?, ?, ?) RETURNING id`

	url := urlDB{
		ShortURL:  shortURL,
		LongURL:   longURL,
		CreatedAt: entity.FormatTimestamp(createdAt),
		ExpiresAt: sql.NullString{String: entity.FormatTimestamp(expiresAt), Valid: true},
	}

	err := r.db.GetContext(ctx, &url.ID, r.db.Rebind(query),
		url.ShortURL, url.LongURL, url.CreatedAt, url.ExpiresAt)
	if err != nil {
		return nil, &entity.StoreError{Op: op, Err: err}
	}

	return url.toEntity()
}

// RetrieveByShortURL returns the earliest row stored under shortURL.
func (r *URLRepository) RetrieveByShortURL(ctx context.Context, shortURL string) (*entity.URL, error) {
	const op = "adapter.repository.sqlrepo.URLRepository.RetrieveByShortURL"
	const query = `SELECT id, short_url, long_url, created_at, expires_at FROM shorturls WHERE short_url = ? ORDER BY id LIMIT 1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, r.db.Rebind(query), shortURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, &entity.StoreError{Op: op, Err: err}
	}

	res, err := url.toEntity()
	if err != nil {
		return nil, &entity.StoreError{Op: op, Err: err}
	}

	return res, nil
}
