package repository

import (
	"context"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

// SettingsRepository reads and writes the persisted connector options.
type SettingsRepository interface {
	// Load reads the current settings. Callers must not cache the result across operations.
	Load(ctx context.Context) (entity.Settings, error)
	// SetOption upserts a single option value.
	SetOption(ctx context.Context, name, value string) error
}
