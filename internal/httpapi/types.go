package httpapi

import "time"

// HeaderAPIKey carries the bearer API key on data-fetch requests.
const HeaderAPIKey = "X-API-Key"

type trustRequest struct {
	AppID   string `json:"app_id"`
	AppName string `json:"app_name"`
}

type trustResponse struct {
	Trusted bool `json:"trusted"`
}

type loginRequest struct {
	APIKey   string `json:"api_key"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
}

type validateAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type validateAPIKeyResponse struct {
	IsValid bool `json:"is_valid"`
}

// recordMetadata is what external callers see: never the encrypted payload,
// let alone plaintext.
type recordMetadata struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}
