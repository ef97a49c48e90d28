package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/service"
	"github.com/mfnunez/avisia-utm-builder/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestService creates a test environment with a mock repository.
func setupTestService() (service.HistoryService, *mocks.MockCampaignRepository) {
	repo := mocks.NewMockCampaignRepository()
	logger, _ := zap.NewDevelopment()
	return service.NewHistoryService(repo, logger), repo
}

func TestHistoryService_Save_Success(t *testing.T) {
	historyService, repo := setupTestService()

	input := &models.SaveLinkInput{
		BaseURL:  "https://avisia.fr/page",
		Source:   "LinkedIn",
		Medium:   "Social Organic",
		Campaign: "Launch 2024",
		Content:  "Post Carrousel",
	}

	ctx := context.Background()
	record, err := historyService.Save(ctx, input, "marketing@avisia.fr")

	require.NoError(t, err)
	assert.Equal(t, "marketing@avisia.fr", record.UserEmail)
	assert.Equal(t, "https://avisia.fr/page", record.InitialURL)
	assert.Equal(t, "linkedin", record.UTMSource)
	assert.Equal(t, "social-organic", record.UTMMedium)
	assert.Equal(t, "launch-2024", record.UTMCampaign)
	assert.Equal(t, "post-carrousel", record.UTMContent)
	assert.Empty(t, record.UTMTerm)
	assert.Equal(t,
		"https://avisia.fr/page?utm_source=linkedin&utm_medium=social-organic&utm_campaign=launch-2024&utm_content=post-carrousel",
		record.FinalURL)
	assert.False(t, record.Timestamp.IsZero(), "timestamp must be store-assigned")
	assert.Equal(t, 1, repo.Count())
}

func TestHistoryService_Save_MissingFields(t *testing.T) {
	historyService, repo := setupTestService()

	inputs := []*models.SaveLinkInput{
		{Source: "s", Medium: "m", Campaign: "c"},
		{BaseURL: "https://a.fr", Medium: "m", Campaign: "c"},
		{BaseURL: "https://a.fr", Source: "s", Campaign: "c"},
		{BaseURL: "https://a.fr", Source: "s", Medium: "m"},
	}

	ctx := context.Background()
	for _, input := range inputs {
		record, err := historyService.Save(ctx, input, "user@avisia.fr")
		assert.ErrorIs(t, err, service.ErrMissingFields)
		assert.Nil(t, record)
	}
	assert.Equal(t, 0, repo.Count())
}

func TestHistoryService_Save_StoreError(t *testing.T) {
	historyService, repo := setupTestService()
	repo.InsertErr = errors.New("write rejected")

	input := &models.SaveLinkInput{
		BaseURL:  "https://avisia.fr/page",
		Source:   "linkedin",
		Medium:   "email",
		Campaign: "x",
	}

	_, err := historyService.Save(context.Background(), input, "user@avisia.fr")
	assert.Error(t, err)
}

// TestHistoryService_Query_ConjunctiveFilters verifies that a record must
// satisfy ALL supplied filters to appear in the results.
func TestHistoryService_Query_ConjunctiveFilters(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	saves := []*models.SaveLinkInput{
		{BaseURL: "https://a.fr/1", Source: "linkedin", Medium: "email", Campaign: "launch"},
		{BaseURL: "https://a.fr/2", Source: "linkedin", Medium: "cpc", Campaign: "launch"},
		{BaseURL: "https://a.fr/3", Source: "newsletter", Medium: "email", Campaign: "launch"},
	}
	for _, in := range saves {
		_, err := historyService.Save(ctx, in, "user@avisia.fr")
		require.NoError(t, err)
	}

	records, err := historyService.Query(ctx, models.QueryFilter{Source: "linkedin", Medium: "email"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://a.fr/1", records[0].InitialURL)
}

func TestHistoryService_Query_CampaignSubstringCaseInsensitive(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	_, err := historyService.Save(ctx, &models.SaveLinkInput{
		BaseURL: "https://a.fr/1", Source: "s", Medium: "m", Campaign: "Blog-Launch",
	}, "user@avisia.fr")
	require.NoError(t, err)

	records, err := historyService.Query(ctx, models.QueryFilter{Campaign: "blog"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = historyService.Query(ctx, models.QueryFilter{Campaign: "BLOG-LAUNCH"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = historyService.Query(ctx, models.QueryFilter{Campaign: "newsletter"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryService_Query_NewestFirstAndLimit(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := historyService.Save(ctx, &models.SaveLinkInput{
			BaseURL: fmt.Sprintf("https://a.fr/%d", i), Source: "s", Medium: "m", Campaign: "c",
		}, "user@avisia.fr")
		require.NoError(t, err)
	}

	records, err := historyService.Query(ctx, models.QueryFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "https://a.fr/4", records[0].InitialURL, "newest record must come first")
	assert.Equal(t, "https://a.fr/2", records[2].InitialURL)
}

func TestHistoryService_Query_DefaultsLimit(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := historyService.Save(ctx, &models.SaveLinkInput{
			BaseURL: fmt.Sprintf("https://a.fr/%d", i), Source: "s", Medium: "m", Campaign: "c",
		}, "user@avisia.fr")
		require.NoError(t, err)
	}

	records, err := historyService.Query(ctx, models.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

func TestHistoryService_FilterChoices(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	saves := []*models.SaveLinkInput{
		{BaseURL: "https://a.fr/1", Source: "linkedin", Medium: "email", Campaign: "c"},
		{BaseURL: "https://a.fr/2", Source: "newsletter", Medium: "email", Campaign: "c"},
	}
	for _, in := range saves {
		_, err := historyService.Save(ctx, in, "user@avisia.fr")
		require.NoError(t, err)
	}

	choices := historyService.FilterChoices(ctx)
	assert.Equal(t, []string{"linkedin", "newsletter"}, choices.Sources)
	assert.Equal(t, []string{"email"}, choices.Mediums)
}

// TestHistoryService_FilterChoices_SoftFail verifies the degradation policy:
// a store failure yields empty choice sets, not an error, and the degraded
// result is not cached.
func TestHistoryService_FilterChoices_SoftFail(t *testing.T) {
	historyService, repo := setupTestService()
	ctx := context.Background()

	_, err := historyService.Save(ctx, &models.SaveLinkInput{
		BaseURL: "https://a.fr/1", Source: "linkedin", Medium: "email", Campaign: "c",
	}, "user@avisia.fr")
	require.NoError(t, err)

	repo.DistinctErr = errors.New("store unavailable")
	choices := historyService.FilterChoices(ctx)
	assert.Empty(t, choices.Sources)
	assert.Empty(t, choices.Mediums)
	assert.NotNil(t, choices.Sources, "degraded choices must be empty sets, not nil")

	// store recovers, the next call must not serve the degraded result
	repo.DistinctErr = nil
	choices = historyService.FilterChoices(ctx)
	assert.Equal(t, []string{"linkedin"}, choices.Sources)
}

func TestHistoryService_FilterChoices_CacheInvalidatedOnSave(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	_, err := historyService.Save(ctx, &models.SaveLinkInput{
		BaseURL: "https://a.fr/1", Source: "linkedin", Medium: "email", Campaign: "c",
	}, "user@avisia.fr")
	require.NoError(t, err)

	choices := historyService.FilterChoices(ctx)
	require.Equal(t, []string{"linkedin"}, choices.Sources)

	_, err = historyService.Save(ctx, &models.SaveLinkInput{
		BaseURL: "https://a.fr/2", Source: "youtube", Medium: "email", Campaign: "c",
	}, "user@avisia.fr")
	require.NoError(t, err)

	choices = historyService.FilterChoices(ctx)
	assert.Equal(t, []string{"linkedin", "youtube"}, choices.Sources)
}

func TestHistoryService_Delete_EmptySetIsNoOp(t *testing.T) {
	historyService, _ := setupTestService()
	assert.NoError(t, historyService.Delete(context.Background(), nil))
}

func TestHistoryService_Delete_ZeroMatchesIsSuccess(t *testing.T) {
	historyService, _ := setupTestService()
	err := historyService.Delete(context.Background(), []string{"https://a.fr/never-saved"})
	assert.NoError(t, err)
}

// TestHistoryService_Delete_RemovesDuplicates documents the sharp edge:
// identical configurations collapse to the same final_url and are deleted
// together.
func TestHistoryService_Delete_RemovesDuplicates(t *testing.T) {
	historyService, repo := setupTestService()
	ctx := context.Background()

	input := &models.SaveLinkInput{
		BaseURL: "https://a.fr/dup", Source: "s", Medium: "m", Campaign: "c",
	}
	first, err := historyService.Save(ctx, input, "user@avisia.fr")
	require.NoError(t, err)
	second, err := historyService.Save(ctx, input, "other@avisia.fr")
	require.NoError(t, err)
	require.Equal(t, first.FinalURL, second.FinalURL)

	require.NoError(t, historyService.Delete(ctx, []string{first.FinalURL}))
	assert.Equal(t, 0, repo.Count())
}

func TestHistoryService_ExportCSV(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	_, err := historyService.Save(ctx, &models.SaveLinkInput{
		BaseURL: "https://avisia.fr/x", Source: "LinkedIn", Medium: "Email", Campaign: "Launch",
	}, "user@avisia.fr")
	require.NoError(t, err)

	data, err := historyService.ExportCSV(ctx, models.QueryFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"timestamp,user_email,initial_url,utm_source,utm_medium,utm_campaign,utm_content,utm_term,final_url",
		lines[0])
	assert.Contains(t, lines[1], "user@avisia.fr")
	assert.Contains(t, lines[1], "https://avisia.fr/x?utm_source=linkedin&utm_medium=email&utm_campaign=launch")
}

// TestHistoryService_SaveThenQuery is the end-to-end scenario: a saved
// record comes back through a filtered query with its normalized values.
func TestHistoryService_SaveThenQuery(t *testing.T) {
	historyService, _ := setupTestService()
	ctx := context.Background()

	_, err := historyService.Save(ctx, &models.SaveLinkInput{
		BaseURL:  "https://avisia.fr/x",
		Source:   "LinkedIn",
		Medium:   "Social Organic",
		Campaign: "Launch",
		Content:  "Post",
	}, "user@avisia.fr")
	require.NoError(t, err)

	records, err := historyService.Query(ctx, models.QueryFilter{Source: "linkedin"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "social-organic", records[0].UTMMedium)
	assert.Equal(t, "post", records[0].UTMContent)
}
