package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/models"
	"github.com/queryforge-io/queryforge-engine/pkg/services"
)

// AdaptersResponse lists the database types and URL prefixes the engine
// can connect to.
type AdaptersResponse struct {
	Types    []string `json:"types"`
	Prefixes []string `json:"prefixes"`
}

// DatabasesHandler handles database connection CRUD and metadata endpoints.
type DatabasesHandler struct {
	connections services.ConnectionService
	registry    *dialect.Registry
	logger      *zap.Logger
}

// NewDatabasesHandler creates a new DatabasesHandler.
func NewDatabasesHandler(connections services.ConnectionService, registry *dialect.Registry, logger *zap.Logger) *DatabasesHandler {
	return &DatabasesHandler{connections: connections, registry: registry, logger: logger}
}

// RegisterRoutes registers the databases handler's routes on the given mux.
func (h *DatabasesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/databases", h.List)
	mux.HandleFunc("POST /api/databases", h.Create)
	mux.HandleFunc("GET /api/databases/{name}", h.Get)
	mux.HandleFunc("DELETE /api/databases/{name}", h.Delete)
	mux.HandleFunc("GET /api/databases/{name}/metadata", h.Metadata)
	mux.HandleFunc("POST /api/databases/{name}/refresh", h.Refresh)
	mux.HandleFunc("GET /api/adapters", h.Adapters)
}

// List handles GET /api/databases
// Returns all registered connections with masked URLs and object counts.
func (h *DatabasesHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.connections.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list connections", zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/databases
// Registers a new connection after probing connectivity and extracting
// schema metadata.
func (h *DatabasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "connection name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.URL == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "connection url is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	resp, err := h.connections.Create(r.Context(), req.Name, req.URL)
	if err != nil {
		h.logger.Warn("Failed to create connection",
			zap.String("name", req.Name),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/databases/{name}
func (h *DatabasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	resp, err := h.connections.Get(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/databases/{name}
// Removes the connection, its cached engine, and its stored metadata.
func (h *DatabasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.connections.Delete(r.Context(), name); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Metadata handles GET /api/databases/{name}/metadata
// Returns the stored table and column tree for the connection.
func (h *DatabasesHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	resp, err := h.connections.GetMetadata(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Refresh handles POST /api/databases/{name}/refresh
// Re-extracts schema metadata from the live database.
func (h *DatabasesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	resp, err := h.connections.Refresh(r.Context(), name)
	if err != nil {
		h.logger.Warn("Failed to refresh metadata",
			zap.String("name", name),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Adapters handles GET /api/adapters
func (h *DatabasesHandler) Adapters(w http.ResponseWriter, r *http.Request) {
	resp := AdaptersResponse{
		Types:    h.registry.SupportedTypes(),
		Prefixes: h.registry.SupportedPrefixes(),
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *DatabasesHandler) writeError(w http.ResponseWriter, err error) {
	if werr := WriteAppError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}
