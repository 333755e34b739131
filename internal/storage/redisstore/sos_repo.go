package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raksha-safety/raksha-backend/internal/sos/domain"
)

// SOSRepository keeps the canonical record under raksha:sos:{id} and the per-user
// history in a hash plus a time-ordered index. Both are written in one MULTI/EXEC.
type SOSRepository struct {
	client *redis.Client
}

func NewSOSRepository(client *redis.Client) *SOSRepository {
	return &SOSRepository{client: client}
}

func (r *SOSRepository) Create(ctx context.Context, rec *domain.Record) error {
	recData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal sos record: %w", err)
	}
	histData, err := json.Marshal(rec.HistoryEntry())
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sosKey(rec.ID), recData, 0)
		pipe.HSet(ctx, historyKey(rec.UserID), rec.ID, histData)
		pipe.ZAdd(ctx, historyIndexKey(rec.UserID), redis.Z{
			Score:  float64(rec.Timestamp.UnixMilli()),
			Member: rec.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create sos record: %w", err)
	}
	return nil
}

func (r *SOSRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	data, err := r.client.Get(ctx, sosKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSOSNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sos record: %w", err)
	}

	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sos record: %w", err)
	}
	return &rec, nil
}

func (r *SOSRepository) Deactivate(ctx context.Context, id, userID string, at time.Time) error {
	key := sosKey(id)
	err := watchTx(ctx, r.client, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSOSNotFound
		}
		if err != nil {
			return err
		}

		var rec domain.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal sos record: %w", err)
		}
		if rec.UserID != userID {
			return fmt.Errorf("sos record %s is owned by another user", id)
		}
		rec.Deactivate(at)

		recData, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		histData, err := json.Marshal(rec.HistoryEntry())
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, recData, 0)
			pipe.HSet(ctx, historyKey(rec.UserID), rec.ID, histData)
			return nil
		})
		return err
	}, key)
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

	ids, err := r.client.ZRevRange(ctx, historyIndexKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sos history: %w", err)
	}
	if len(ids) == 0 {
		return entries, nil
	}

	vals, err := r.client.HMGet(ctx, historyKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sos history: %w", err)
	}
	for _, v := range vals {
		if v == nil {
			continue
		}
		var e domain.HistoryEntry
		if err := unmarshalValue(v, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
