package questsdk

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/questboard/pkg/questx"
)

// ============================================================================
// Transport Types
// ============================================================================

// Request describes one API call. It is kept for the lifetime of an
// Execute so the exact same call can be reissued after a refresh.
type Request struct {
	Method string
	// Path is relative to the SDKClient's BaseURL, e.g. "/v1/quests".
	Path string
	// Body is JSON encoded when non-nil.
	Body   any
	Header http.Header
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ============================================================================
// Auth Types
// ============================================================================

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`

	// RefreshToken may be omitted by refresh, in which case the old one
	// stays valid.
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// RefreshRequest is the body of POST /v1/auth/refresh. The camelCase field
// name is part of the API contract.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// Profile is the authenticated user.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============================================================================
// Organization Types
// ============================================================================

type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type OrganizationList struct {
	Organizations []Organization `json:"organizations"`
}

// ============================================================================
// Quest Types
// ============================================================================

// Quest carries the derived aggregate progress and colour alongside its
// steps. Both are computed by the server on every read.
type Quest struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organization_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Steps          []QuestStep      `json:"steps"`
	Progress       int              `json:"progress"`
	Color          questx.ColorBand `json:"color"`
	CreatedAt      time.Time        `json:"created_at"`
}

type QuestStep struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Kind         questx.Kind `json:"kind"`
	CurrentValue float64     `json:"current_value"`
	TargetValue  float64     `json:"target_value"`
	Progress     int         `json:"progress"`
}

type QuestList struct {
	Quests []Quest `json:"quests"`
}

type CreateQuestRequest struct {
	OrganizationID string              `json:"organization_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Steps          []CreateStepRequest `json:"steps"`
}

type CreateStepRequest struct {
	Title       string  `json:"title"`
	TargetValue float64 `json:"target_value"`
}

// ContributionRequest adds Amount to a step. Negative amounts withdraw.
type ContributionRequest struct {
	Amount float64 `json:"amount"`
}

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
