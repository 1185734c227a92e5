package provider

import "time"

// Provider identifies an external platform integration.
type Provider string

const (
	ProviderFacebook       Provider = "facebook"
	ProviderInstagram      Provider = "instagram"
	ProviderGoogleBusiness Provider = "google_business"
	ProviderFacebookPage   Provider = "facebook_page"
	ProviderEventbrite     Provider = "eventbrite"
	ProviderMeetup         Provider = "meetup"
)

// EventProviders is the provider subset that supports event export.
var EventProviders = []Provider{ProviderFacebookPage, ProviderEventbrite, ProviderMeetup}

// PostContent is the normalized content of a social post handed to adapters.
type PostContent struct {
	Text      string   `json:"text"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

// PostResult is what an adapter returns for a successfully created post.
type PostResult struct {
	ExternalID string `json:"external_id"`
	URL        string `json:"url,omitempty"`
}

// EventDetails is the normalized event description handed to adapters.
type EventDetails struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// EventResult is what an adapter returns for a successfully created event.
type EventResult struct {
	ExternalID string `json:"external_id"`
	URL        string `json:"url,omitempty"`
}

// Token carries fresh credentials returned by a refresh call. A nil ExpiresAt
// means the provider issued a non-expiring token.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}
