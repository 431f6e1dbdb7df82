package entity

// Option names in the `siloq_options` table.
const (
	OptionAPIURL        = "siloq_api_url"
	OptionAPIKey        = "siloq_api_key"
	OptionSiteID        = "siloq_site_id"
	OptionAutoSync      = "siloq_auto_sync"
	OptionDummyScanOnly = "siloq_dummy_scan_only"
)

// Settings is the persisted connector configuration, read fresh on every call.
type Settings struct {
	APIURL        string
	APIKey        string
	SiteID        string
	AutoSync      bool
	DummyScanOnly bool
}

// Credentials returns the API credential pair.
func (s Settings) Credentials() Credentials {
	return Credentials{BaseURL: s.APIURL, APIKey: s.APIKey}
}

// Configured reports whether both credentials are present.
func (s Settings) Configured() bool {
	return s.APIURL != "" && s.APIKey != ""
}

// Credentials are passed to every remote call.
type Credentials struct {
	BaseURL string
	APIKey  string
}
