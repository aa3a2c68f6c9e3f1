package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/models"
	"github.com/queryforge-io/queryforge-engine/pkg/services"
)

// NLQueryResult is the response to a natural language query. When Execute
// was requested it also carries the rows the generated SQL produced.
type NLQueryResult struct {
	SQL         string              `json:"sql"`
	Explanation string              `json:"explanation"`
	Result      *models.QueryResult `json:"result,omitempty"`
}

// QueryHandler handles SQL and natural language query endpoints.
type QueryHandler struct {
	connections services.ConnectionService
	queries     services.QueryService
	nl          services.NLQueryService
	logger      *zap.Logger
}

// NewQueryHandler creates a new QueryHandler. The NL service may be nil
// when no language model is configured.
func NewQueryHandler(connections services.ConnectionService, queries services.QueryService, nl services.NLQueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{connections: connections, queries: queries, nl: nl, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/databases/{name}/query", h.Query)
	mux.HandleFunc("POST /api/databases/{name}/nl-query", h.NLQuery)
}

// Query handles POST /api/databases/{name}/query
// Validates and executes a read-only SQL statement against the named
// connection.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.SQL == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "sql is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	conn, err := h.connections.GetRecord(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.queries.Execute(r.Context(), conn, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// NLQuery handles POST /api/databases/{name}/nl-query
// Generates SQL from a natural language question and, when Execute is set,
// runs it through the same validation path as a direct query.
func (h *QueryHandler) NLQuery(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req models.NLQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	conn, err := h.connections.GetRecord(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	generated, err := h.nl.Generate(r.Context(), conn, req.Question)
	if err != nil {
		h.logger.Warn("Failed to generate SQL",
			zap.String("name", name),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	resp := NLQueryResult{
		SQL:         generated.SQL,
		Explanation: generated.Explanation,
	}

	if req.Execute {
		result, err := h.queries.Execute(r.Context(), conn, &models.QueryRequest{SQL: generated.SQL})
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp.Result = result
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *QueryHandler) writeError(w http.ResponseWriter, err error) {
	if werr := WriteAppError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}
