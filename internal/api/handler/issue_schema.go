package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// successResponse acknowledges a mutation with no other payload.
type successResponse struct {
	Success bool `json:"success"`
}

// --- Request types ---

type createIssueRequest struct {
	Title         string `json:"title"          validate:"required"`
	Description   string `json:"description"`
	ReporterEmail string `json:"reporter_email" validate:"required,email"`
	Category      string `json:"category"       validate:"required"`
	Location      string `json:"location"       validate:"required"`
	ImageURL      string `json:"image_url"`
	Priority      string `json:"priority"       validate:"omitempty,oneof=normal high"`
}

// editIssueRequest patches descriptive fields; nil means "leave unchanged".
type editIssueRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Location    *string `json:"location,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	By          string  `json:"by" validate:"required,email"`
}

type assignIssueRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	By     string `json:"by"     validate:"required"`
}

type upvoteRequest struct {
	VoterEmail string `json:"voter_email" validate:"required,email"`
}

// --- Response types ---
// Response-only types are owned by the transport layer so the JSON contract
// is not coupled to internal service changes.

type createIssueResponse struct {
	InsertedID string `json:"inserted_id"`
}

type upvoteResponse struct {
	Success  bool `json:"success"`
	NewCount int  `json:"new_count"`
}

type staffRefResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type timelineEntryResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	By      string    `json:"by"`
	At      time.Time `json:"at"`
}

type issueResponse struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	ReporterEmail   string                  `json:"reporter_email"`
	ReporterPremium bool                    `json:"reporter_premium"`
	Category        string                  `json:"category"`
	Location        string                  `json:"location"`
	ImageURL        string                  `json:"image_url,omitempty"`
	Priority        string                  `json:"priority"`
	Status          string                  `json:"status"`
	AssignedStaff   *staffRefResponse       `json:"assigned_staff,omitempty"`
	Upvotes         int                     `json:"upvotes"`
	Voters          []string                `json:"voters"`
	Timeline        []timelineEntryResponse `json:"timeline"`
	CreatedAt       time.Time               `json:"created_at"`
}

// issueSummaryResponse is the lightweight item used in list responses.
// It intentionally omits the timeline to keep payloads small.
type issueSummaryResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	ReporterEmail string    `json:"reporter_email"`
	Upvotes       int       `json:"upvotes"`
	CreatedAt     time.Time `json:"created_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listIssuesResponse struct {
	Total      int64                  `json:"total"`
	Issues     []issueSummaryResponse `json:"issues"`
	Pagination paginationResponse     `json:"pagination"`
}
