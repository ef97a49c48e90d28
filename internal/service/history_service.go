package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
	"github.com/mfnunez/avisia-utm-builder/internal/utm"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var ErrMissingFields = errors.New("base URL, source, medium and campaign are required")

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500

	choicesCacheKey = "filter_choices"
	choicesCacheTTL = 5 * time.Minute
)

// csvHeader matches the Campaign Record field names, in schema order.
var csvHeader = []string{
	"timestamp", "user_email", "initial_url",
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
	"final_url",
}

// HistoryService owns saving, querying, exporting and bulk-deleting
// Campaign Records.
type HistoryService interface {
	Save(ctx context.Context, input *models.SaveLinkInput, userEmail string) (*models.CampaignRecord, error)
	Query(ctx context.Context, filter models.QueryFilter) ([]models.CampaignRecord, error)
	FilterChoices(ctx context.Context) models.FilterChoices
	Delete(ctx context.Context, finalURLs []string) error
	ExportCSV(ctx context.Context, filter models.QueryFilter) ([]byte, error)
}

type historyService struct {
	repo    repository.CampaignRepository
	choices *gocache.Cache
	logger  *zap.Logger
}

func NewHistoryService(repo repository.CampaignRepository, logger *zap.Logger) HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &historyService{
		repo:    repo,
		choices: gocache.New(choicesCacheTTL, 10*time.Minute),
		logger:  logger,
	}
}

// Save composes the final URL from the form input and appends one record to
// the history store. The stored final_url is always the Compose derivation
// of the other fields; there is no other write path. Store failures are
// reported to the caller, never retried.
func (s *historyService) Save(ctx context.Context, input *models.SaveLinkInput, userEmail string) (*models.CampaignRecord, error) {
	if input.BaseURL == "" || input.Source == "" || input.Medium == "" || input.Campaign == "" {
		return nil, ErrMissingFields
	}

	record := &models.CampaignRecord{
		UserEmail:   userEmail,
		InitialURL:  input.BaseURL,
		UTMSource:   utm.Normalize(input.Source),
		UTMMedium:   utm.Normalize(input.Medium),
		UTMCampaign: utm.Normalize(input.Campaign),
		UTMContent:  utm.Normalize(input.Content),
		UTMTerm:     utm.Normalize(input.Term),
		FinalURL:    utm.Compose(input.BaseURL, input.Source, input.Medium, input.Campaign, input.Content, input.Term),
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, err
	}

	s.choices.Delete(choicesCacheKey)

	return record, nil
}

func (s *historyService) Query(ctx context.Context, filter models.QueryFilter) ([]models.CampaignRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultQueryLimit
	}
	if filter.Limit > maxQueryLimit {
		filter.Limit = maxQueryLimit
	}

	return s.repo.Query(ctx, filter)
}

// FilterChoices returns the distinct sources and mediums seen in history,
// for the filter dropdowns. Retrieval failures degrade to empty sets: the
// dropdowns are a convenience, not worth failing the page for.
func (s *historyService) FilterChoices(ctx context.Context) models.FilterChoices {
	if cached, found := s.choices.Get(choicesCacheKey); found {
		return cached.(models.FilterChoices)
	}

	var (
		choices  models.FilterChoices
		degraded bool
	)

	sources, err := s.repo.DistinctValues(ctx, "utm_source")
	if err != nil {
		s.logger.Warn("Failed to load distinct sources", zap.Error(err))
		degraded = true
	}
	mediums, err := s.repo.DistinctValues(ctx, "utm_medium")
	if err != nil {
		s.logger.Warn("Failed to load distinct mediums", zap.Error(err))
		degraded = true
	}

	choices.Sources = emptyIfNil(sources)
	choices.Mediums = emptyIfNil(mediums)

	// don't cache a degraded result, the next call should retry
	if !degraded {
		s.choices.Set(choicesCacheKey, choices, gocache.DefaultExpiration)
	}

	return choices
}

// Delete removes every record matching one of the given final URLs. An
// empty set and a set matching nothing are both successful no-ops. Because
// final_url is not unique, duplicates are deleted together.
func (s *historyService) Delete(ctx context.Context, finalURLs []string) error {
	if len(finalURLs) == 0 {
		return nil
	}

	if err := s.repo.DeleteByFinalURL(ctx, finalURLs); err != nil {
		return err
	}

	s.choices.Delete(choicesCacheKey)

	return nil
}

// ExportCSV renders the filtered history as a flat delimited file, one row
// per record, header matching the schema field names.
func (s *historyService) ExportCSV(ctx context.Context, filter models.QueryFilter) ([]byte, error) {
	records, err := s.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			rec.UserEmail,
			rec.InitialURL,
			rec.UTMSource,
			rec.UTMMedium,
			rec.UTMCampaign,
			rec.UTMContent,
			rec.UTMTerm,
			rec.FinalURL,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
