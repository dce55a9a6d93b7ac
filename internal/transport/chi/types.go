package chi

// ErrorResponseCode classifies API errors.
type ErrorResponseCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeIndexUnavailable  ErrorResponseCode = "index_unavailable"
	ErrorResponseCodeRebuildInProgress ErrorResponseCode = "rebuild_in_progress"
	ErrorResponseCodeSourceUnavailable ErrorResponseCode = "source_unavailable"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the POST /search body. Absent fields take server defaults.
type SearchRequest struct {
	Query             string   `json:"query"`
	TopK              *int     `json:"top_k,omitempty"`
	CategoryFilter    *string  `json:"category_filter,omitempty"`
	MinRelevanceScore *float64 `json:"min_relevance_score,omitempty"`
	IncludeAnswer     *bool    `json:"include_answer,omitempty"`
	AnswerModel       *string  `json:"answer_model,omitempty"`
}

// SearchParams are the GET /search query parameters.
type SearchParams struct {
	Query             string   `form:"query" json:"query"`
	TopK              *int     `form:"top_k,omitempty" json:"top_k,omitempty"`
	CategoryFilter    *string  `form:"category_filter,omitempty" json:"category_filter,omitempty"`
	MinRelevanceScore *float64 `form:"min_relevance_score,omitempty" json:"min_relevance_score,omitempty"`
	IncludeAnswer     *bool    `form:"include_answer,omitempty" json:"include_answer,omitempty"`
	AnswerModel       *string  `form:"answer_model,omitempty" json:"answer_model,omitempty"`
}

// SearchResultItem is one ranked hit.
type SearchResultItem struct {
	ItemID   string  `json:"item_id"`
	Score    float64 `json:"score"`
	Category string  `json:"category,omitempty"`
	Headline string  `json:"headline,omitempty"`
}

// SearchResponse is the search outcome. Answer fields are null when no answer was produced.
type SearchResponse struct {
	Query            string             `json:"query"`
	Results          []SearchResultItem `json:"results"`
	TotalResults     int                `json:"total_results"`
	Answer           *string            `json:"answer"`
	AnswerModel      *string            `json:"answer_model,omitempty"`
	AnswerConfidence *float64           `json:"answer_confidence"`
	Citations        []string           `json:"citations"`
	CitedItemIDs     []string           `json:"cited_item_ids,omitempty"`
	AnswerError      *string            `json:"answer_error,omitempty"`
	RetrievalTimeMs  float64            `json:"retrieval_time_ms"`
	AnswerTimeMs     *float64           `json:"answer_time_ms"`
}

// RebuildResponse reports a completed rebuild.
type RebuildResponse struct {
	NumDocuments     int     `json:"num_documents"`
	Skipped          int     `json:"skipped"`
	BuildTimeSeconds float64 `json:"build_time_seconds"`
	Generation       string  `json:"generation"`
}

// IndexStatusResponse reports index coverage.
type IndexStatusResponse struct {
	DocCount      int     `json:"doc_count"`
	TotalItems    int     `json:"total_items"`
	IsLoaded      bool    `json:"is_loaded"`
	IndexCoverage float64 `json:"index_coverage"`
	Generation    *string `json:"generation,omitempty"`
	BuiltAt       *string `json:"built_at,omitempty"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
