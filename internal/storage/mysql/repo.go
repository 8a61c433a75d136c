// Package mysql is the durable session store and the warmer's miss log.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staybook/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ForSession implements domain.StoreFactory.
func (r *Repo) ForSession(id string) domain.KVStore { return &sessionStore{db: r.db, id: id} }

type sessionStore struct {
	db *sql.DB
	id string
}

func (s *sessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, getValueSQL, s.id, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *sessionStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, upsertValueSQL, s.id, key, value)
	return err
}

func (s *sessionStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deleteValueSQL, s.id, key)
	return err
}

// PurgeIdle deletes sessions untouched since before now-ttl.
func (r *Repo) PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeIdleSQL, ttl.Microseconds())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) LogMiss(ctx context.Context, hotelID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, hotelID, status, reason)
	return err
}

type Miss struct {
	HotelID string
	Status  int
	Reason  string
	SeenAt  time.Time
}

func (r *Repo) ListMisses(ctx context.Context, limit int) ([]Miss, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listMissesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Miss
	for rows.Next() {
		var m Miss
		if err := rows.Scan(&m.HotelID, &m.Status, &m.Reason, &m.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
