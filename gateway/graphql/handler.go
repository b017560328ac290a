package graphql

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	artemis "github.com/botobag/artemis/graphql"
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/artemis/graphql/executor"
	"github.com/botobag/artemis/graphql/parser"
	"github.com/botobag/artemis/graphql/token"

	"github.com/c360/blogstream/metric"
)

// Request is the standard GraphQL HTTP request envelope
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Handler serves GraphQL queries and mutations over HTTP POST.
// Subscriptions are rejected here and directed to the WebSocket
// endpoint.
type Handler struct {
	schema  *artemis.Schema
	logger  *slog.Logger
	metrics *metric.Metrics
	maxBody int64
}

// NewHandler creates a GraphQL HTTP handler for the given schema
func NewHandler(schema *artemis.Schema, logger *slog.Logger, metrics *metric.Metrics, maxBody int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handler{
		schema:  schema,
		logger:  logger.With("component", "graphql-handler"),
		metrics: metrics,
		maxBody: maxBody,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req Request
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		h.observe("unknown", "error", start)
		return
	}
	if req.Query == "" {
		h.writeErrorMessage(w, http.StatusBadRequest, "query is required")
		h.observe("unknown", "error", start)
		return
	}

	document, err := parser.Parse(token.NewSource(&token.SourceConfig{
		Body: token.SourceBody([]byte(req.Query)),
	}), parser.ParseOptions{})
	if err != nil {
		h.writeErrorMessage(w, http.StatusOK, err.Error())
		h.observe("unknown", "error", start)
		return
	}

	op, errs := executor.Prepare(executor.PrepareParams{
		Schema:        *h.schema,
		Document:      document,
		OperationName: req.OperationName,
	})
	if errs.HaveOccurred() {
		h.writeErrors(w, http.StatusOK, errs)
		h.observe("unknown", "error", start)
		return
	}

	label := operationLabel(op.Type())
	if op.Type() == ast.OperationTypeSubscription {
		h.writeErrorMessage(w, http.StatusBadRequest,
			"subscriptions are not supported over HTTP; use the WebSocket endpoint")
		h.observe(label, "error", start)
		return
	}

	result := <-op.Execute(r.Context(), executor.ExecuteParams{
		VariableValues: req.Variables,
	})

	status := "ok"
	if result.Errors.HaveOccurred() {
		status = "error"
	}
	h.observe(label, status, start)

	w.Header().Set("Content-Type", "application/json")
	if err := result.MarshalJSONTo(w); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// observe records request metrics when a metrics sink is attached
func (h *Handler) observe(operation, status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RequestsTotal.WithLabelValues(operation, status).Inc()
	h.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (h *Handler) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	h.writeErrors(w, status, artemis.ErrorsOf(message))
}

func (h *Handler) writeErrors(w http.ResponseWriter, status int, errs artemis.Errors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": errs.Errors,
	}); err != nil {
		h.logger.Error("failed to write error response", "error", err)
	}
}

func operationLabel(opType ast.OperationType) string {
	switch opType {
	case ast.OperationTypeQuery:
		return "query"
	case ast.OperationTypeMutation:
		return "mutation"
	case ast.OperationTypeSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}
