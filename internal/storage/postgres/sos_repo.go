package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raksha-safety/raksha-backend/internal/sos/domain"
)

// SOSRepository writes sos_records and sos_history inside one transaction.
type SOSRepository struct {
	pool *pgxpool.Pool
}

func NewSOSRepository(pool *pgxpool.Pool) *SOSRepository {
	return &SOSRepository{pool: pool}
}

func (r *SOSRepository) Create(ctx context.Context, rec *domain.Record) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal sos record: %w", err)
	}
	entryJSON, err := json.Marshal(rec.HistoryEntry())
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sos_records (id, user_id, status, triggered_at, record)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.ID, rec.UserID, string(rec.Status), rec.Timestamp, recJSON); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO sos_history (sos_id, user_id, triggered_at, entry)
			VALUES ($1, $2, $3, $4)
		`, rec.ID, rec.UserID, rec.Timestamp, entryJSON)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create sos record: %w", err)
	}
	return nil
}

func (r *SOSRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	var recJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT record FROM sos_records WHERE id = $1`, id).Scan(&recJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSOSNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sos record: %w", err)
	}

	var rec domain.Record
	if err := json.Unmarshal(recJSON, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sos record: %w", err)
	}
	return &rec, nil
}

func (r *SOSRepository) Deactivate(ctx context.Context, id, userID string, at time.Time) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var recJSON []byte
		err := tx.QueryRow(ctx, `SELECT record FROM sos_records WHERE id = $1 FOR UPDATE`, id).Scan(&recJSON)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrSOSNotFound
		}
		if err != nil {
			return err
		}

		var rec domain.Record
		if err := json.Unmarshal(recJSON, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal sos record: %w", err)
		}
		if !rec.OwnedBy(userID) {
			return fmt.Errorf("sos record %s is owned by another user", id)
		}
		rec.Deactivate(at)

		recJSON, err = json.Marshal(&rec)
		if err != nil {
			return err
		}
		entryJSON, err := json.Marshal(rec.HistoryEntry())
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE sos_records SET status = $2, record = $3 WHERE id = $1
		`, id, string(rec.Status), recJSON); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE sos_history SET entry = $2 WHERE sos_id = $1`, id, entryJSON)
		return err
	})
	if errors.Is(err, domain.ErrSOSNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to deactivate sos record: %w", err)
	}
	return nil
}

func (r *SOSRepository) ListHistory(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	if limit <= 0 {
		return entries, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT entry FROM sos_history
		WHERE user_id = $1
		ORDER BY triggered_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sos history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryJSON []byte
		if err := rows.Scan(&entryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		var e domain.HistoryEntry
		if err := json.Unmarshal(entryJSON, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sos history: %w", err)
	}
	return entries, nil
}
