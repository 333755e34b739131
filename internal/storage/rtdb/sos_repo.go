package rtdb

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/db"

	"github.com/raksha-safety/raksha-backend/internal/sos/domain"
)

// historyNode carries the numeric sort key next to the entry fields.
type historyNode struct {
	domain.HistoryEntry
	TimestampMS int64 `json:"timestamp_ms"`
}

// SOSRepository writes active_sos/{id} and users/{uid}/sos_history/{id} through
// multi-path updates on the root ref, which RTDB applies atomically.
type SOSRepository struct {
	client *db.Client
}

func NewSOSRepository(client *db.Client) *SOSRepository {
	return &SOSRepository{client: client}
}

func (r *SOSRepository) Create(ctx context.Context, rec *domain.Record) error {
	updates := map[string]interface{}{
		sosPath(rec.ID): rec,
		historyEntryPath(rec.UserID, rec.ID): historyNode{
			HistoryEntry: rec.HistoryEntry(),
			TimestampMS:  rec.Timestamp.UnixMilli(),
		},
	}
	if err := r.client.NewRef("/").Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to create sos record: %w", err)
	}
	return nil
}

func (r *SOSRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	var rec *domain.Record
	if err := r.client.NewRef(sosPath(id)).Get(ctx, &rec); err != nil {
		return nil, fmt.Errorf("failed to get sos record: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrSOSNotFound
	}
	return rec, nil
}

func (r *SOSRepository) Deactivate(ctx context.Context, id, userID string, at time.Time) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !rec.OwnedBy(userID) {
		return fmt.Errorf("sos record %s is owned by another user", id)
	}

	stamp := at.Format(time.RFC3339Nano)
	entry := historyEntryPath(rec.UserID, id)
	updates := map[string]interface{}{
		sosPath(id) + "/status":         string(domain.StatusDeactivated),
		sosPath(id) + "/deactivated_at": stamp,
		entry + "/status":               string(domain.StatusDeactivated),
		entry + "/deactivated_at":       stamp,
	}
	if err := r.client.NewRef("/").Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to deactivate sos record: %w", err)
	}
	return nil
}

func (r *SOSRepository) ListHistory(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	if limit <= 0 {
		return entries, nil
	}

	nodes, err := r.client.NewRef(historyPath(userID)).
		OrderByChild("timestamp_ms").
		LimitToLast(limit).
		GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sos history: %w", err)
	}

	// GetOrdered is ascending; walk backwards for newest first.
	for i := len(nodes) - 1; i >= 0; i-- {
		var n historyNode
		if err := nodes[i].Unmarshal(&n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry %s: %w", nodes[i].Key(), err)
		}
		if n.ID == "" {
			n.ID = nodes[i].Key()
		}
		entries = append(entries, n.HistoryEntry)
	}
	return entries, nil
}
