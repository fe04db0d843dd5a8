// Package memory is an in-process implementation of the store contracts and of the
// directory lookups.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

type Store struct {
	mu sync.Mutex

	applications  map[string]models.Application
	notifications map[string]models.Notification
	badges        map[string]models.Badge
	userBadges    map[string]models.UserBadge
	outbox        map[string]models.OutboxEntry
	outboxOrder   []string

	jobs          map[string]models.Job
	organizations map[string]models.Organization
	candidates    map[string]models.CandidateProfile

	// Fail, when set, is returned by every call. Used to simulate an outage.
	Fail error
}

func New() *Store {
	return &Store{
		applications:  make(map[string]models.Application),
		notifications: make(map[string]models.Notification),
		badges:        make(map[string]models.Badge),
		userBadges:    make(map[string]models.UserBadge),
		outbox:        make(map[string]models.OutboxEntry),
		jobs:          make(map[string]models.Job),
		organizations: make(map[string]models.Organization),
		candidates:    make(map[string]models.CandidateProfile),
	}
}

var (
	_ store.ApplicationStore  = (*Store)(nil)
	_ store.NotificationStore = (*Store)(nil)
	_ store.BadgeStore        = (*Store)(nil)
	_ store.OutboxStore       = (*Store)(nil)
)

// ===== applications =====

func (s *Store) CreateApplication(_ context.Context, app *models.Application, outbox []models.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, existing := range s.applications {
		if existing.CandidateID == app.CandidateID && existing.JobID == app.JobID {
			return store.ErrDuplicate
		}
	}
	s.applications[app.ID] = *app
	s.appendOutbox(outbox, app.CreatedAt)
	return nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	app, ok := s.applications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &app, nil
}

func (s *Store) CompareAndSetStatus(_ context.Context, next *models.Application, expected models.Status, outbox []models.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	cur, ok := s.applications[next.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Status != expected {
		return store.ErrStatusConflict
	}
	s.applications[next.ID] = *next
	s.appendOutbox(outbox, next.UpdatedAt)
	return nil
}

func (s *Store) ListApplications(_ context.Context, filter models.ListFilter) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	filter = filter.Normalize()

	out := make([]models.Application, 0)
	for _, app := range s.applications {
		if filter.CandidateID != "" && app.CandidateID != filter.CandidateID {
			continue
		}
		if filter.OrganizationID != "" && app.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.JobID != "" && app.JobID != filter.JobID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset >= len(out) {
		return []models.Application{}, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) CountApplicationsByCandidate(_ context.Context, candidateID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	n := 0
	for _, app := range s.applications {
		if app.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

// ===== notifications =====

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}
	if _, ok := s.notifications[n.ID]; ok {
		return false, nil
	}
	s.notifications[n.ID] = *n
	return true, nil
}

func (s *Store) GetNotification(_ context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	n, ok := s.notifications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &n, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string, at time.Time) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	n, ok := s.notifications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if n.ReadAt == nil {
		readAt := at
		n.ReadAt = &readAt
		s.notifications[id] = n
	}
	return &n, nil
}

func (s *Store) ListNotifications(_ context.Context, kind models.RecipientKind, recipientID string, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientKind == kind && n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ===== badges =====

// PutBadge registers a badge definition.
func (s *Store) PutBadge(b models.Badge) {
	s.mu.Lock()
	s.badges[b.ID] = b
	s.mu.Unlock()
}

func (s *Store) ActiveBadges(_ context.Context, trigger models.TriggerKind) ([]models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.Badge, 0)
	for _, b := range s.badges {
		if b.Active && b.TriggerKind == trigger {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Threshold == out[j].Threshold {
			return out[i].ID < out[j].ID
		}
		return out[i].Threshold < out[j].Threshold
	})
	return out, nil
}

func (s *Store) AwardBadge(_ context.Context, ub models.UserBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}
	key := ub.UserID + "/" + ub.BadgeID
	if _, ok := s.userBadges[key]; ok {
		return false, nil
	}
	s.userBadges[key] = ub
	return true, nil
}

func (s *Store) UserBadges(_ context.Context, userID string) ([]models.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.UserBadge, 0)
	for _, ub := range s.userBadges {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeID < out[j].BadgeID })
	return out, nil
}

// ===== outbox =====

func (s *Store) appendOutbox(entries []models.OutboxEntry, at time.Time) {
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Status == "" {
			e.Status = models.OutboxPending
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = at
		}
		if e.AvailableAt.IsZero() {
			e.AvailableAt = e.CreatedAt
		}
		s.outbox[e.ID] = e
		s.outboxOrder = append(s.outboxOrder, e.ID)
	}
}

// Enqueue appends entries outside any application write.
func (s *Store) Enqueue(entries ...models.OutboxEntry) {
	s.mu.Lock()
	s.appendOutbox(entries, time.Now().UTC())
	s.mu.Unlock()
}

// Outbox returns a snapshot of all entries in insertion order.
func (s *Store) Outbox() []models.OutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OutboxEntry, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		out = append(out, s.outbox[id])
	}
	return out
}

func (s *Store) ClaimOutbox(_ context.Context, now time.Time, limit int, lease time.Duration) ([]models.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.OutboxEntry, 0)
	for _, id := range s.outboxOrder {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := s.outbox[id]
		if e.Status != models.OutboxPending || e.AvailableAt.After(now) {
			continue
		}
		e.Attempts++
		e.AvailableAt = now.Add(lease)
		s.outbox[id] = e
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) CompleteOutbox(_ context.Context, id string) error {
	return s.updateOutbox(id, func(e *models.OutboxEntry) {
		e.Status = models.OutboxDone
		e.LastError = ""
	})
}

func (s *Store) RetryOutbox(_ context.Context, id string, availableAt time.Time, lastErr string) error {
	return s.updateOutbox(id, func(e *models.OutboxEntry) {
		e.AvailableAt = availableAt
		e.LastError = lastErr
	})
}

func (s *Store) FailOutbox(_ context.Context, id string, lastErr string) error {
	return s.updateOutbox(id, func(e *models.OutboxEntry) {
		e.Status = models.OutboxFailed
		e.LastError = lastErr
	})
}

func (s *Store) updateOutbox(id string, fn func(e *models.OutboxEntry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	e, ok := s.outbox[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&e)
	s.outbox[id] = e
	return nil
}

// ===== directory =====

func (s *Store) PutJob(j models.Job) {
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
}

func (s *Store) PutOrganization(o models.Organization) {
	s.mu.Lock()
	s.organizations[o.ID] = o
	s.mu.Unlock()
}

func (s *Store) PutCandidate(c models.CandidateProfile) {
	s.mu.Lock()
	s.candidates[c.ID] = c
	s.mu.Unlock()
}

func (s *Store) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &j, nil
}

func (s *Store) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	o, ok := s.organizations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Store) GetCandidateProfile(_ context.Context, id string) (*models.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	c, ok := s.candidates[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}
