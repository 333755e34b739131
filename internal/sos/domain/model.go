package domain

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

const (
	DefaultTriggerType  = "manual"
	DefaultUserName     = "User"
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is the canonical SOS document, keyed globally by ID.
type Record struct {
	ID                string                `json:"sos_id"`
	UserID            string                `json:"user_id"`
	UserName          string                `json:"user_name"`
	Timestamp         time.Time             `json:"timestamp"`
	Location          Location              `json:"location"`
	LocationURL       string                `json:"location_url"`
	TriggerType       string                `json:"trigger_type"`
	Status            Status                `json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
	DeactivatedAt     *time.Time            `json:"deactivated_at,omitempty"`
	EmergencyContacts []usersdomain.Contact `json:"emergency_contacts"`
}

// HistoryEntry is the per-user projection of a Record.
type HistoryEntry struct {
	ID            string     `json:"sos_id"`
	Timestamp     time.Time  `json:"timestamp"`
	Location      Location   `json:"location"`
	Status        Status     `json:"status"`
	TriggerType   string     `json:"trigger_type"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

func (r *Record) HistoryEntry() HistoryEntry {
	return HistoryEntry{
		ID:            r.ID,
		Timestamp:     r.Timestamp,
		Location:      r.Location,
		Status:        r.Status,
		TriggerType:   r.TriggerType,
		DeactivatedAt: r.DeactivatedAt,
	}
}

// Deactivate moves the record to its terminal state. Repeating it only refreshes DeactivatedAt.
func (r *Record) Deactivate(at time.Time) {
	r.Status = StatusDeactivated
	r.DeactivatedAt = &at
}

func (r *Record) OwnedBy(uid string) bool {
	return r.UserID == uid
}

// NewID returns "SOS_<12 random hex>_<unix seconds>".
func NewID(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("SOS_%s_%d", hex.EncodeToString(u[:])[:12], now.Unix())
}

// LocationURL builds the maps link for a coordinate pair using the shortest decimal form.
func LocationURL(loc Location) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
}

func AlertMessage(userName, locationURL string) string {
	return fmt.Sprintf("🚨 EMERGENCY! %s needs help immediately! Location: %s", userName, locationURL)
}

// Repository is the SOS record store. Create and Deactivate must write the canonical
// record and the history projection in a single transaction.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	// Get returns ErrSOSNotFound when no record has that id.
	Get(ctx context.Context, id string) (*Record, error)
	// Deactivate returns ErrSOSNotFound when no record has that id.
	Deactivate(ctx context.Context, id, userID string, at time.Time) error
	// ListHistory returns at most limit entries, newest first.
	ListHistory(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
}

// TriggerInput is the optional trigger body. A nil Location means 0,0.
type TriggerInput struct {
	Location    *Location `json:"location"`
	TriggerType string    `json:"trigger_type"`
}
