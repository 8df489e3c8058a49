package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	analyzerentity "pitch_backend/internal/feature/analyzer/domain/entity"
	"pitch_backend/internal/feature/pitch/domain/entity"
	"pitch_backend/internal/feature/pitch/usecase"
	startupadapters "pitch_backend/internal/feature/startup/adapters"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "failed to initialize test database")

	// every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&PitchAnalysisModel{}, &startupadapters.StartupModel{}), "failed to migrate tables")
	return db
}

func seedStartup(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()

	m := &startupadapters.StartupModel{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Name:        name,
		Domain:      "CleanTech",
		Stage:       "Seed",
		Funding:     "$2M",
		Description: "Solar drones",
		Tags:        []string{},
		Logo:        "🚀",
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

func newPitch(startupID uuid.UUID, uploadedAt time.Time) *entity.PitchAnalysis {
	return entity.NewPitchAnalysis(startupID, "deck.pdf", "u/s/1-deck.pdf", "application/pdf",
		entity.UploadMeta{Title: "Seed deck", Description: "Electrifying delivery"}, uploadedAt)
}

func completed(t *testing.T, repo *pitchRepository, p *entity.PitchAnalysis) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, p.StartProcessing())
	require.NoError(t, repo.Save(ctx, p, entity.StatusPending))
	score := 80
	rec := analyzerentity.RecommendationBuy
	insights := "Large market"
	require.NoError(t, p.Complete(&analyzerentity.ScoreResult{
		MarketSizeScore:          &score,
		OverallScore:             &score,
		KeyStrengths:             []string{"Team"},
		KeyConcerns:              []string{},
		MarketInsights:           &insights,
		InvestmentRecommendation: &rec,
		Source:                   analyzerentity.SourceModel,
	}))
	require.NoError(t, repo.Save(ctx, p, entity.StatusProcessing))
}

func TestPitchRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPitchRepository(db)
	ctx := context.Background()
	p := newPitch(seedStartup(t, db, "SkyVolt"), time.Now().UTC())

	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Nil(t, got.Result)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Seed deck", *got.Title)
	assert.Nil(t, got.Category)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, usecase.ErrPitchNotFound)
}

func TestPitchRepository_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPitchRepository(db)
	ctx := context.Background()
	p := newPitch(seedStartup(t, db, "SkyVolt"), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	completed(t, repo, p)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.Result)
	assert.Equal(t, 80, *got.Result.OverallScore)
	assert.Nil(t, got.Result.TeamStrengthScore)
	assert.Equal(t, []string{"Team"}, got.Result.KeyStrengths)
	assert.Equal(t, []string{}, got.Result.RiskFactors)
	assert.Equal(t, analyzerentity.RecommendationBuy, *got.Result.InvestmentRecommendation)
	assert.Equal(t, analyzerentity.SourceModel, got.Result.Source)
}

func TestPitchRepository_SaveRejectsStaleStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPitchRepository(db)
	ctx := context.Background()
	p := newPitch(seedStartup(t, db, "SkyVolt"), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, p.StartProcessing())
	err := repo.Save(ctx, p, entity.StatusFailed)

	assert.ErrorIs(t, err, usecase.ErrConcurrentUpdate)
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)
}

func TestPitchRepository_Lists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPitchRepository(db)
	ctx := context.Background()
	skyVolt := seedStartup(t, db, "SkyVolt")
	other := seedStartup(t, db, "Other")
	base := time.Now().UTC().Add(-time.Hour)

	older := newPitch(skyVolt, base)
	newer := newPitch(skyVolt, base.Add(10*time.Minute))
	pending := newPitch(other, base.Add(20*time.Minute))
	for _, p := range []*entity.PitchAnalysis{older, newer, pending} {
		require.NoError(t, repo.Create(ctx, p))
	}
	completed(t, repo, older)
	completed(t, repo, newer)

	byStartup, err := repo.ListByStartup(ctx, skyVolt)
	require.NoError(t, err)
	require.Len(t, byStartup, 2)
	assert.Equal(t, newer.ID, byStartup[0].ID)
	assert.Equal(t, older.ID, byStartup[1].ID)

	list, err := repo.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "pending analyses are not listed")
	assert.Equal(t, newer.ID, list[0].Pitch.ID)
	assert.Equal(t, "SkyVolt", list[0].Startup.Name)
	assert.NotNil(t, list[0].Pitch.Result)
}

func TestPitchRepository_ExpireStale(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPitchRepository(db)
	ctx := context.Background()
	startupID := seedStartup(t, db, "SkyVolt")
	now := time.Now().UTC()

	stalePending := newPitch(startupID, now)
	staleProcessing := newPitch(startupID, now)
	fresh := newPitch(startupID, now)
	done := newPitch(startupID, now)
	for _, p := range []*entity.PitchAnalysis{stalePending, staleProcessing, fresh, done} {
		require.NoError(t, repo.Create(ctx, p))
	}
	require.NoError(t, staleProcessing.StartProcessing())
	require.NoError(t, repo.Save(ctx, staleProcessing, entity.StatusPending))
	completed(t, repo, done)

	old := now.Add(-time.Hour)
	require.NoError(t, db.Model(&PitchAnalysisModel{}).
		Where("id IN ?", []uuid.UUID{stalePending.ID, staleProcessing.ID, done.ID}).
		UpdateColumn("updated_at", old).Error)
	cutoff := now.Add(-15 * time.Minute)

	n, err := repo.CountStale(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.ExpireStale(ctx, cutoff, usecase.ExpiredReason)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, id := range []uuid.UUID{stalePending.ID, staleProcessing.ID} {
		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusExpired, got.Status)
		require.NotNil(t, got.FailureReason)
		assert.Equal(t, usecase.ExpiredReason, *got.FailureReason)
	}

	got, err := repo.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)

	got, err = repo.FindByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, got.Status, "completed rows are never expired")
}
