package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	healthuc "github.com/bennettck/collections-local-sub001/internal/usecase/health"
	indexinguc "github.com/bennettck/collections-local-sub001/internal/usecase/indexing"
)

// Searcher runs the retrieval pipeline.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (response.Response, error)
}

// Indexer rebuilds the index and reports its coverage.
type Indexer interface {
	Rebuild(ctx context.Context) (indexinguc.RebuildResult, error)
	Status(ctx context.Context) (indexinguc.Status, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// SearchDefaults are applied to request fields the client left out.
type SearchDefaults struct {
	TopK              int
	MaxTopK           int
	MinRelevanceScore float64
}

// DefaultSearchDefaults returns the built-in query defaults.
func DefaultSearchDefaults() SearchDefaults {
	return SearchDefaults{
		TopK:              request.DefaultTopK,
		MaxTopK:           request.MaxTopK,
		MinRelevanceScore: request.DefaultMinRelevanceScore,
	}
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search and index maintenance API.
type Server struct {
	search        Searcher
	indexing      Indexer
	health        HealthChecker
	defaults      SearchDefaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	indexing Indexer,
	health HealthChecker,
	defaults SearchDefaults,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:   search,
		indexing: indexing,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeIndexUnavailable),
		sentinelHandler(domain.ErrRebuildInProgress, http.StatusConflict, ErrorResponseCodeRebuildInProgress),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, ErrorResponseCodeSourceUnavailable),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.SearchPost)
	r.Get("/search", s.SearchGet)
	r.Post("/index/rebuild", s.RebuildIndex)
	r.Get("/index/status", s.IndexStatus)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchPost handles POST /search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, SearchParams(body))
}

// SearchGet handles GET /search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	s.runSearch(w, r, params)
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var params SearchParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "query", q, &params.Query); err != nil {
		return params, &invalidParamError{name: "query", err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", q, &params.TopK); err != nil {
		return params, &invalidParamError{name: "top_k", err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "category_filter", q, &params.CategoryFilter); err != nil {
		return params, &invalidParamError{name: "category_filter", err: err}
	}
	if err := runtime.BindQueryParameter(
		"form", true, false, "min_relevance_score", q, &params.MinRelevanceScore,
	); err != nil {
		return params, &invalidParamError{name: "min_relevance_score", err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "include_answer", q, &params.IncludeAnswer); err != nil {
		return params, &invalidParamError{name: "include_answer", err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "answer_model", q, &params.AnswerModel); err != nil {
		return params, &invalidParamError{name: "answer_model", err: err}
	}
	return params, nil
}

type invalidParamError struct {
	name string
	err  error
}

func (e *invalidParamError) Error() string {
	return "Invalid format for parameter " + e.name + ": " + e.err.Error()
}

func (e *invalidParamError) Unwrap() error { return e.err }

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, params SearchParams) {
	searchReq, err := s.searchRequestFromParams(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.search.Search(ctx, &searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setCompletionHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponseToAPI(&resp))
}

func (s *Server) searchRequestFromParams(p SearchParams) (request.Request, error) {
	topK := s.defaults.TopK
	if p.TopK != nil && *p.TopK != 0 {
		topK = *p.TopK
	}
	if s.defaults.MaxTopK > 0 && topK > s.defaults.MaxTopK {
		topK = s.defaults.MaxTopK
	}

	minScore := s.defaults.MinRelevanceScore
	if p.MinRelevanceScore != nil {
		minScore = *p.MinRelevanceScore
	}

	includeAnswer := true
	if p.IncludeAnswer != nil {
		includeAnswer = *p.IncludeAnswer
	}

	return request.New(
		p.Query,
		topK,
		derefString(p.CategoryFilter),
		minScore,
		includeAnswer,
		derefString(p.AnswerModel),
	)
}

// RebuildIndex handles POST /index/rebuild.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	res, err := s.indexing.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RebuildResponse{
		NumDocuments:     res.NumDocuments,
		Skipped:          res.Skipped,
		BuildTimeSeconds: res.BuildTime.Seconds(),
		Generation:       res.Generation,
	})
}

// IndexStatus handles GET /index/status.
func (s *Server) IndexStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.indexing.Status(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := IndexStatusResponse{
		DocCount:      st.DocCount,
		TotalItems:    st.TotalItems,
		IsLoaded:      st.IsLoaded,
		IndexCoverage: st.IndexCoverage,
	}
	if st.IsLoaded {
		gen := st.Generation
		builtAt := st.BuiltAt.UTC().Format(time.RFC3339)
		resp.Generation = &gen
		resp.BuiltAt = &builtAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setCompletionHeaders(w http.ResponseWriter, usage *domain.CompletionUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.TotalTokens))
		w.Header().Set("X-Completion-Model", usage.Model)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var ire *domain.InvalidRequestError
	if errors.As(err, &ire) {
		return ire.Error()
	}
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrIndexUnavailable,
		domain.ErrRebuildInProgress,
		domain.ErrSourceUnavailable,
		domain.ErrNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// answerErrorMessage reduces a synthesis failure to its sentinel text.
// Provider detail stays in the search service log.
func answerErrorMessage(err error) string {
	if errors.Is(err, domain.ErrMalformedSynthesisOutput) {
		return domain.ErrMalformedSynthesisOutput.Error()
	}
	return domain.ErrSynthesisFailure.Error()
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func searchResponseToAPI(resp *response.Response) SearchResponse {
	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		items[i] = SearchResultItem{ItemID: r.ItemID(), Score: r.Score()}
		if it := r.Item(); it != nil {
			items[i].Category = it.Category
			items[i].Headline = it.Headline
		}
	}

	out := SearchResponse{
		Query:            resp.Query,
		Results:          items,
		TotalResults:     resp.TotalResults(),
		AnswerConfidence: resp.Confidence,
		RetrievalTimeMs:  millis(resp.RetrievalTime),
	}
	if resp.AnswerTime != nil {
		ms := millis(*resp.AnswerTime)
		out.AnswerTimeMs = &ms
	}
	if resp.AnswerErr != nil {
		msg := answerErrorMessage(resp.AnswerErr)
		out.AnswerError = &msg
	}
	if ans := resp.Answer; ans != nil {
		text, model := ans.Text, ans.Model
		out.Answer = &text
		out.AnswerModel = &model
		out.Citations = make([]string, 0, len(ans.Citations))
		for _, n := range ans.Citations {
			out.Citations = append(out.Citations, strconv.Itoa(n))
			if n >= 1 && n <= len(items) {
				out.CitedItemIDs = append(out.CitedItemIDs, items[n-1].ItemID)
			}
		}
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
