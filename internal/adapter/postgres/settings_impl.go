package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

var optionNames = []string{
	entity.OptionAPIURL,
	entity.OptionAPIKey,
	entity.OptionSiteID,
	entity.OptionAutoSync,
	entity.OptionDummyScanOnly,
}

// SettingsRepoImpl reads connector options from the siloq_options table.
type SettingsRepoImpl struct {
	db DB
}

// NewSettingsRepo creates a new instance of SettingsRepoImpl.
func NewSettingsRepo(db DB) *SettingsRepoImpl {
	return &SettingsRepoImpl{db: db}
}

// Load reads all connector options. Missing options take their zero value.
func (r *SettingsRepoImpl) Load(ctx context.Context) (entity.Settings, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, value FROM siloq_options WHERE name = ANY($1);`,
		optionNames,
	)
	if err != nil {
		return entity.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	var s entity.Settings
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return entity.Settings{}, err
		}
		switch name {
		case entity.OptionAPIURL:
			s.APIURL = value
		case entity.OptionAPIKey:
			s.APIKey = value
		case entity.OptionSiteID:
			s.SiteID = value
		case entity.OptionAutoSync:
			s.AutoSync = parseFlag(value)
		case entity.OptionDummyScanOnly:
			s.DummyScanOnly = parseFlag(value)
		}
	}
	return s, rows.Err()
}

// SetOption upserts one option.
func (r *SettingsRepoImpl) SetOption(ctx context.Context, name, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO siloq_options (name, value) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("set option %s: %w", name, err)
	}
	return nil
}

// SeedOption writes an option only when it is not set yet.
func (r *SettingsRepoImpl) SeedOption(ctx context.Context, name, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO siloq_options (name, value) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING;`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("seed option %s: %w", name, err)
	}
	return nil
}

// parseFlag accepts the truthy spellings the admin UI stores ("1", "yes", "true", "on").
func parseFlag(v string) bool {
	switch v {
	case "yes", "on":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
