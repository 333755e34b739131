package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/logging"
	"github.com/raksha-safety/raksha-backend/internal/metrics"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	"github.com/raksha-safety/raksha-backend/internal/sos/domain"
	usersdomain "github.com/raksha-safety/raksha-backend/internal/users/domain"
)

type SOSService struct {
	records domain.Repository
	users   usersdomain.Repository
	metrics *metrics.Metrics
	policy  outbound.Policy
	now     func() time.Time
}

func NewSOSService(records domain.Repository, users usersdomain.Repository, m *metrics.Metrics, policy outbound.Policy) *SOSService {
	return &SOSService{
		records: records,
		users:   users,
		metrics: m,
		policy:  policy,
		now:     time.Now,
	}
}

type TriggerResult struct {
	Record       *domain.Record
	AlertMessage string
}

// Trigger records a new active SOS with a snapshot of the caller's name and contacts.
// The record is written once; a failed write is reported, never retried.
func (s *SOSService) Trigger(ctx context.Context, uid string, in domain.TriggerInput) (*TriggerResult, error) {
	now := s.now().UTC()

	var loc domain.Location
	if in.Location != nil {
		loc = *in.Location
	}
	triggerType := in.TriggerType
	if triggerType == "" {
		triggerType = domain.DefaultTriggerType
	}

	userName, err := s.userName(ctx, uid)
	if err != nil {
		return nil, err
	}

	var contacts []usersdomain.Contact
	if err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		contacts, err = s.users.GetContacts(ctx, uid)
		return err
	}); err != nil {
		return nil, apperr.Store(err)
	}
	if contacts == nil {
		contacts = []usersdomain.Contact{}
	}

	locationURL := domain.LocationURL(loc)
	rec := &domain.Record{
		ID:                domain.NewID(now),
		UserID:            uid,
		UserName:          userName,
		Timestamp:         now,
		Location:          loc,
		LocationURL:       locationURL,
		TriggerType:       triggerType,
		Status:            domain.StatusActive,
		CreatedAt:         now,
		EmergencyContacts: contacts,
	}

	if err := s.policy.Call(ctx, func(ctx context.Context) error {
		return s.records.Create(ctx, rec)
	}); err != nil {
		return nil, apperr.Store(err)
	}

	s.metrics.IncSOSTriggered(triggerType)
	logging.FromContext(ctx).Info("sos triggered",
		zap.String("sos_id", rec.ID),
		zap.String("uid", uid),
		zap.String("trigger_type", triggerType),
		zap.Int("contacts", len(contacts)),
	)

	return &TriggerResult{
		Record:       rec,
		AlertMessage: domain.AlertMessage(userName, locationURL),
	}, nil
}

func (s *SOSService) GetDetails(ctx context.Context, uid, id string) (*domain.Record, error) {
	return s.loadOwned(ctx, uid, id)
}

// Deactivate is idempotent; repeating it refreshes deactivated_at.
func (s *SOSService) Deactivate(ctx context.Context, uid, id string) error {
	if id == "" {
		return apperr.Validation("sos_id is required")
	}
	if _, err := s.loadOwned(ctx, uid, id); err != nil {
		return err
	}

	err := s.policy.Call(ctx, func(ctx context.Context) error {
		return s.records.Deactivate(ctx, id, uid, s.now().UTC())
	})
	if errors.Is(err, domain.ErrSOSNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "SOS not found")
	}
	if err != nil {
		return apperr.Store(err)
	}

	s.metrics.IncSOSDeactivated()
	logging.FromContext(ctx).Info("sos deactivated", zap.String("sos_id", id), zap.String("uid", uid))
	return nil
}

func (s *SOSService) ListHistory(ctx context.Context, uid string, limit int) ([]domain.HistoryEntry, error) {
	if limit < 1 || limit > domain.MaxHistoryLimit {
		return nil, apperr.Validation(fmt.Sprintf("limit must be an integer between 1 and %d", domain.MaxHistoryLimit))
	}

	var entries []domain.HistoryEntry
	if err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.records.ListHistory(ctx, uid, limit)
		return err
	}); err != nil {
		return nil, apperr.Store(err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

func (s *SOSService) loadOwned(ctx context.Context, uid, id string) (*domain.Record, error) {
	var rec *domain.Record
	err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.records.Get(ctx, id)
		return err
	}, domain.ErrSOSNotFound)
	if errors.Is(err, domain.ErrSOSNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "SOS not found")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	if !rec.OwnedBy(uid) {
		return nil, apperr.Forbidden("Unauthorized access")
	}
	return rec, nil
}

// userName falls back to the default name when the caller has no profile.
func (s *SOSService) userName(ctx context.Context, uid string) (string, error) {
	var p *usersdomain.Profile
	err := s.policy.Read(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.users.GetProfile(ctx, uid)
		return err
	}, usersdomain.ErrUserNotFound)
	if errors.Is(err, usersdomain.ErrUserNotFound) {
		return domain.DefaultUserName, nil
	}
	if err != nil {
		return "", apperr.Store(err)
	}
	if p.Name == "" {
		return domain.DefaultUserName, nil
	}
	return p.Name, nil
}
