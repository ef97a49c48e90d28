package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfnunez/avisia-utm-builder/internal/models"
)

// Fields exposed to DistinctValues. Field names are interpolated into SQL,
// so anything outside this set is rejected.
var distinctFields = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
}

type CampaignRepository interface {
	Insert(ctx context.Context, record *models.CampaignRecord) error
	Query(ctx context.Context, filter models.QueryFilter) ([]models.CampaignRecord, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
	DeleteByFinalURL(ctx context.Context, finalURLs []string) error
}

type campaignRepository struct {
	db *PostgresDB
}

func NewCampaignRepository(db *PostgresDB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Insert(ctx context.Context, record *models.CampaignRecord) error {
	query := `
		INSERT INTO campaign_links
			(user_email, initial_url, utm_source, utm_medium, utm_campaign, utm_content, utm_term, final_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING timestamp
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		record.UserEmail,
		record.InitialURL,
		record.UTMSource,
		record.UTMMedium,
		record.UTMCampaign,
		record.UTMContent,
		record.UTMTerm,
		record.FinalURL,
	).Scan(&record.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to insert campaign record: %w", err)
	}

	return nil
}

// likeEscaper neutralizes LIKE metacharacters so filter input is matched
// literally. Without it a filter like "q4_2024" would match "q4-2024".
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Query returns records newest first. Source and medium filters are exact
// matches, the campaign filter is a case-insensitive substring match, and
// all supplied filters are combined with AND.
func (r *campaignRepository) Query(ctx context.Context, filter models.QueryFilter) ([]models.CampaignRecord, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Source != "" {
		args = append(args, filter.Source)
		conditions = append(conditions, fmt.Sprintf("utm_source = $%d", len(args)))
	}
	if filter.Medium != "" {
		args = append(args, filter.Medium)
		conditions = append(conditions, fmt.Sprintf("utm_medium = $%d", len(args)))
	}
	if filter.Campaign != "" {
		args = append(args, "%"+escapeLike(filter.Campaign)+"%")
		conditions = append(conditions, fmt.Sprintf(`utm_campaign ILIKE $%d ESCAPE '\'`, len(args)))
	}

	query := `
		SELECT timestamp, user_email, initial_url, utm_source, utm_medium, utm_campaign, utm_content, utm_term, final_url
		FROM campaign_links
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign records: %w", err)
	}
	defer rows.Close()

	var records []models.CampaignRecord
	for rows.Next() {
		var rec models.CampaignRecord
		if err := rows.Scan(
			&rec.Timestamp,
			&rec.UserEmail,
			&rec.InitialURL,
			&rec.UTMSource,
			&rec.UTMMedium,
			&rec.UTMCampaign,
			&rec.UTMContent,
			&rec.UTMTerm,
			&rec.FinalURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campaign record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign records: %w", err)
	}

	return records, nil
}

func (r *campaignRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	if !distinctFields[field] {
		return nil, fmt.Errorf("distinct values not supported for field %q", field)
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM campaign_links WHERE %s <> '' ORDER BY %s",
		field, field, field,
	)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s values: %w", field, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan distinct value: %w", err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distinct values: %w", err)
	}

	return values, nil
}

// DeleteByFinalURL removes every record whose final_url is in the set.
// final_url is not unique, so duplicates all go together. Matching nothing
// is a successful no-op.
func (r *campaignRepository) DeleteByFinalURL(ctx context.Context, finalURLs []string) error {
	if len(finalURLs) == 0 {
		return nil
	}

	query := `DELETE FROM campaign_links WHERE final_url = ANY($1)`

	if _, err := r.db.Pool.Exec(ctx, query, finalURLs); err != nil {
		return fmt.Errorf("failed to delete campaign records: %w", err)
	}

	return nil
}
