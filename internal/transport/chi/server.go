// Package chi exposes the document Q&A services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/domain"
	answeruc "github.com/docsense/docsense/internal/usecase/answer"
	healthuc "github.com/docsense/docsense/internal/usecase/health"
	ingestuc "github.com/docsense/docsense/internal/usecase/ingest"
	retrievaluc "github.com/docsense/docsense/internal/usecase/retrieval"
)

// maxDocumentBytes caps the ingest request body. Plain text documents far
// beyond this are almost certainly a client mistake.
const maxDocumentBytes = 8 << 20

// Error codes returned in JSON error bodies.
const (
	CodeBadRequest              = "bad_request"
	CodeValidationFailed        = "validation_failed"
	CodeDocumentNotFound        = "document_not_found"
	CodeEmbeddingProviderError  = "embedding_provider_error"
	CodeGenerationProviderError = "generation_provider_error"
	CodeInternalError           = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services to HTTP handlers.
type Server struct {
	ingest        *ingestuc.Service
	retrieval     *retrievaluc.Service
	answers       *answeruc.Service
	health        *healthuc.Service
	defaultTopK   int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	retrieval *retrievaluc.Service,
	answers *answeruc.Service,
	health *healthuc.Service,
	defaultTopK int,
	logger *zap.Logger,
) *Server {
	if defaultTopK <= 0 {
		defaultTopK = answeruc.DefaultTopK
	}
	s := &Server{
		ingest:      ingest,
		retrieval:   retrieval,
		answers:     answers,
		health:      health,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidDocumentID, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProviderError),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeValidationFailed),
	}
	return s
}

// Routes mounts all handlers on a fresh chi router.
func (s *Server) Routes(r chi.Router) {
	r.Put("/documents/{documentID}", s.UpsertDocument)
	r.Delete("/documents/{documentID}", s.DeleteDocument)
	r.Post("/documents/{documentID}/answers", s.AnswerQuestion)
	r.Get("/documents/{documentID}/search", s.SearchDocument)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UpsertDocumentRequest is the body for PUT /documents/{documentID}.
type UpsertDocumentRequest struct {
	Text string `json:"text"`
}

// UpsertDocumentResponse acknowledges an ingest.
type UpsertDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// UpsertDocument handles PUT /documents/{documentID}. It replaces the
// document's index wholesale with one built from the request text.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")

	var req UpsertDocumentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Document text is required")
		return
	}

	if err := s.ingest.Ingest(r.Context(), docID, req.Text); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UpsertDocumentResponse{DocumentID: docID, Status: "indexed"})
}

// DeleteDocument handles DELETE /documents/{documentID}. Deleting a document
// that was never ingested still returns 204.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")

	if err := s.ingest.Delete(r.Context(), docID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AnswerRequest is the body for POST /documents/{documentID}/answers.
type AnswerRequest struct {
	Question string `json:"question"`
}

// AnswerResponse carries the generated answer plus its routing metadata.
type AnswerResponse struct {
	Answer         string   `json:"answer"`
	Mode           string   `json:"mode"`
	TopSimilarity  float32  `json:"top_similarity"`
	ReferenceChunk string   `json:"reference_chunk,omitempty"`
	Chunks         []string `json:"chunks,omitempty"`
}

// AnswerQuestion handles POST /documents/{documentID}/answers.
func (s *Server) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Question is required")
		return
	}

	ans, err := s.answers.Answer(r.Context(), docID, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AnswerResponse{
		Answer:         ans.Text,
		Mode:           string(ans.Decision.Mode),
		TopSimilarity:  ans.Decision.TopSimilarity,
		ReferenceChunk: ans.Decision.ReferenceChunk,
		Chunks:         ans.Decision.Chunks,
	})
}

// SearchResultItem is one retrieved chunk with its similarity score.
type SearchResultItem struct {
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

// SearchResponse is the body for GET /documents/{documentID}/search.
type SearchResponse struct {
	TopSimilarity float32            `json:"top_similarity"`
	Items         []SearchResultItem `json:"items"`
}

// SearchDocument handles GET /documents/{documentID}/search?q=...&top_k=N.
// A document without an index yields an empty result, not an error.
func (s *Server) SearchDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Query parameter q is required")
		return
	}

	topK := s.defaultTopK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "top_k must be a positive integer")
			return
		}
		topK = n
	}

	res, err := s.retrieval.Search(r.Context(), docID, query, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(res.Chunks))
	for i, c := range res.Chunks {
		items[i] = SearchResultItem{Score: c.Score, Text: c.Text}
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		TopSimilarity: res.TopSimilarity,
		Items:         items,
	})
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidDocumentID,
		domain.ErrCorruptIndex,
		domain.ErrIndexNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
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
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
