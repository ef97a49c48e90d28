package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mfnunez/avisia-utm-builder/internal/form"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
)

// MockCampaignRepository implements repository.CampaignRepository for testing.
// Set the *Err fields to inject store failures.
type MockCampaignRepository struct {
	mu      sync.RWMutex
	records []models.CampaignRecord
	clock   time.Time

	InsertErr   error
	QueryErr    error
	DistinctErr error
	DeleteErr   error
}

func NewMockCampaignRepository() *MockCampaignRepository {
	return &MockCampaignRepository{clock: time.Now()}
}

func (m *MockCampaignRepository) Insert(ctx context.Context, record *models.CampaignRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}

	// store-assigned timestamp, strictly increasing so ordering is testable
	m.clock = m.clock.Add(time.Second)
	record.Timestamp = m.clock
	m.records = append(m.records, *record)
	return nil
}

func (m *MockCampaignRepository) Query(ctx context.Context, filter models.QueryFilter) ([]models.CampaignRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	var matched []models.CampaignRecord
	for _, rec := range m.records {
		if filter.Source != "" && rec.UTMSource != filter.Source {
			continue
		}
		if filter.Medium != "" && rec.UTMMedium != filter.Medium {
			continue
		}
		if filter.Campaign != "" &&
			!strings.Contains(strings.ToLower(rec.UTMCampaign), strings.ToLower(filter.Campaign)) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

func (m *MockCampaignRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.DistinctErr != nil {
		return nil, m.DistinctErr
	}

	seen := make(map[string]bool)
	var values []string
	for _, rec := range m.records {
		var v string
		switch field {
		case "utm_source":
			v = rec.UTMSource
		case "utm_medium":
			v = rec.UTMMedium
		case "utm_campaign":
			v = rec.UTMCampaign
		default:
			return nil, fmt.Errorf("distinct values not supported for field %q", field)
		}
		if v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	sort.Strings(values)
	return values, nil
}

func (m *MockCampaignRepository) DeleteByFinalURL(ctx context.Context, finalURLs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	doomed := make(map[string]bool, len(finalURLs))
	for _, u := range finalURLs {
		doomed[u] = true
	}

	kept := m.records[:0]
	for _, rec := range m.records {
		if !doomed[rec.FinalURL] {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

func (m *MockCampaignRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MockCampaignRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
}

// MockSessionRepository implements repository.SessionRepository for testing.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	states   map[string]bool
	forms    map[string]form.State
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*models.Session),
		states:   make(map[string]bool),
		forms:    make(map[string]form.State),
	}
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.forms, id)
	return nil
}

func (m *MockSessionRepository) SetState(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = true
	return nil
}

func (m *MockSessionRepository) TakeState(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.states[state] {
		return repository.ErrStateNotFound
	}
	delete(m.states, state)
	return nil
}

func (m *MockSessionRepository) SaveFormState(ctx context.Context, sessionID string, state form.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[sessionID] = state
	return nil
}

func (m *MockSessionRepository) GetFormState(ctx context.Context, sessionID string) (form.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.forms[sessionID]
	if !exists {
		return form.DefaultState(), nil
	}
	return state, nil
}
