package entity

// Site is a Siloq site visible to an API key.
type Site struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ConnectionInfo is returned by a successful connection test.
type ConnectionInfo struct {
	SiteID  string `json:"site_id,omitempty"`
	Account string `json:"account,omitempty"`
	Message string `json:"message,omitempty"`
}

// BusinessProfile is an opaque set of site-level fields.
type BusinessProfile map[string]any

// Well-known business profile keys.
const (
	ProfileBusinessType   = "business_type"
	ProfileServices       = "services"
	ProfileServiceAreas   = "service_areas"
	ProfileTargetAudience = "target_audience"
)
