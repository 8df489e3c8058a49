package di

import (
	"fmt"

	"gorm.io/gorm"

	authadapters "pitch_backend/internal/feature/auth/adapters"
	decisionadapters "pitch_backend/internal/feature/decision/adapters"
	pitchadapters "pitch_backend/internal/feature/pitch/adapters"
	profileadapters "pitch_backend/internal/feature/profile/adapters"
	startupadapters "pitch_backend/internal/feature/startup/adapters"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&authadapters.UserModel{},
		&profileadapters.ProfileModel{},
		&startupadapters.StartupModel{},
		&startupadapters.SavedStartupModel{},
		&pitchadapters.PitchAnalysisModel{},
		&decisionadapters.DecisionModel{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
