package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/ports"
)

//go:embed openapi.yaml
var openapiSpec []byte

// ValidateSpec parses and validates the embedded API document. Called once
// at startup so a broken document fails the server instead of the first
// client that asks for it.
func ValidateSpec() error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

// Server exposes the intake flow as a JSON API.
type Server struct {
	flow    ports.Flow
	logger  *slog.Logger
	metrics *metrics
}

// Option configures the handler.
type Option func(*Server)

// WithLogger configures structured logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the intake flow.
func NewHandler(flow ports.Flow, opts ...Option) http.Handler {
	server := &Server{
		flow:    flow,
		logger:  logging.NewNop(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(server.metrics.middleware)

	r.Post("/chat/start", server.startIntake)
	r.Post("/chat/{sessionID}/answer", server.submitAnswer)
	r.Get("/chat/{sessionID}/recommendation", server.getRecommendations)
	r.Post("/chat/{sessionID}/approval", server.setApproval)

	r.Get("/healthz", server.getHealth)
	r.Handle("/metrics", server.metrics.handler)

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startRequest struct {
	Section  string `json:"section,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Language string `json:"language,omitempty"`
}

type answerRequest struct {
	Answer any `json:"answer"`
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

type errorResponse struct {
	Error      string `json:"error"`
	QuestionID string `json:"questionId,omitempty"`
}

// startIntake handles the POST /chat/start request.
func (s *Server) startIntake(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("startIntake: invalid request body", "err", err)
			return
		}
	}

	result, err := s.flow.StartFlow(r.Context(), body.Section, body.UserID, body.Language)
	if err != nil {
		s.writeError(w, "startIntake", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result)
}

// submitAnswer handles the POST /chat/{sessionID}/answer request.
func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("submitAnswer: invalid request body", "err", err)
		return
	}

	result, err := s.flow.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), body.Answer)
	if err != nil {
		s.writeError(w, "submitAnswer", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// getRecommendations handles the GET /chat/{sessionID}/recommendation request.
func (s *Server) getRecommendations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	recs, err := s.flow.Recommendations(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, "getRecommendations", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":       sessionID,
		"recommendations": recs,
	})
}

// setApproval handles the POST /chat/{sessionID}/approval request.
func (s *Server) setApproval(w http.ResponseWriter, r *http.Request) {
	var body approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("setApproval: invalid request body", "err", err)
		return
	}

	result, err := s.flow.SetApproval(r.Context(), chi.URLParam(r, "sessionID"), body.Approved)
	if err != nil {
		s.writeError(w, "setApproval", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// getHealth handles the GET /healthz request.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// writeError maps domain errors onto HTTP status codes. A rejected answer is
// a client problem and reports the question it belongs to.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      verr.Reason,
			QuestionID: verr.QuestionID,
		})
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSectionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		s.logger.Error(op+" failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Triage API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
