package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pawcare/pawcare-api/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultOpenAPIPath is where the API document lives relative to the working directory
var DefaultOpenAPIPath = filepath.Join("api", "openapi", "openapi.yaml")

// OpenAPIHandler serves the API document as YAML or JSON
type OpenAPIHandler struct {
	openAPIPath string
	baseDir     string
}

// NewOpenAPIHandler creates a new OpenAPI handler with path validation
func NewOpenAPIHandler(openAPIPath string) *OpenAPIHandler {
	if openAPIPath == "" {
		openAPIPath = DefaultOpenAPIPath
	}
	// Resolve absolute paths to prevent directory traversal
	absPath, _ := filepath.Abs(openAPIPath)
	baseDir, _ := filepath.Abs(filepath.Dir(openAPIPath))

	return &OpenAPIHandler{
		openAPIPath: absPath,
		baseDir:     baseDir,
	}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// validatePath ensures the file path is within the allowed directory
func (h *OpenAPIHandler) validatePath() error {
	relPath, err := filepath.Rel(h.baseDir, filepath.Clean(h.openAPIPath))
	if err != nil {
		return err
	}
	if filepath.IsAbs(relPath) || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return os.ErrPermission
	}
	return nil
}

func (h *OpenAPIHandler) read(w http.ResponseWriter) ([]byte, bool) {
	if err := h.validatePath(); err != nil {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "OpenAPI document not found"})
		return nil, false
	}
	data, err := os.ReadFile(h.openAPIPath)
	if err != nil {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "OpenAPI document not found"})
		return nil, false
	}
	return data, true
}

// ServeYAML serves the document as stored
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, _ *http.Request) {
	data, ok := h.read(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(data)
}

// ServeJSON serves the document converted to JSON
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	data, ok := h.read(w)
	if !ok {
		return
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to parse OpenAPI document", "internal_error")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}
