package di

import (
	"context"
	"fmt"

	"pitch_backend/internal/feature/pitch/adapters/textextract"
	pitchusecase "pitch_backend/internal/feature/pitch/usecase"
	"pitch_backend/internal/platform/config"
	"pitch_backend/internal/platform/storage"
)

func noopClose() error { return nil }

// NewObjectStore creates the configured object store and a function releasing it.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (pitchusecase.ObjectStore, func() error, error) {
	switch cfg.Backend {
	case config.StorageLocal:
		store, err := storage.NewLocalStore(cfg.LocalDir)
		if err != nil {
			return nil, nil, err
		}
		return store, noopClose, nil
	case config.StorageGCS:
		store, err := storage.NewGCSStore(ctx, cfg.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewTextExtractor creates the pitch text extractor.
// When vision is enabled PDFs are read through Cloud Vision OCR.
func NewTextExtractor(ctx context.Context, visionEnabled bool) (*textextract.Extractor, func() error, error) {
	if !visionEnabled {
		return textextract.NewExtractor(nil), noopClose, nil
	}
	reader, err := textextract.NewVisionPDFReader(ctx)
	if err != nil {
		return nil, nil, err
	}
	return textextract.NewExtractor(reader), reader.Close, nil
}
