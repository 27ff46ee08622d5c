package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/core/extraction_engine"
	objectclient "github.com/estavel/ingesta/internal/core/object-client"
	"github.com/estavel/ingesta/internal/models"
	"github.com/estavel/ingesta/internal/services"
)

type IngestHandler struct {
	svc    *services.IngestService
	obj    core.ObjectClient // nil when S3 is not configured
	logger *slog.Logger
}

func NewIngestHandler(svc *services.IngestService, obj core.ObjectClient, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{svc: svc, obj: obj, logger: logger.With("handler", "ingest")}
}

type ingestRequest struct {
	Path     string          `json:"path,omitempty"`
	S3URL    string          `json:"s3_url,omitempty"`
	Strategy string          `json:"strategy,omitempty"`
	Metadata models.Metadata `json:"metadata,omitempty"`
}

// IngestDocument runs the pipeline for one document referenced by local path
// or S3 URL. S3 objects are staged to a temp file for the cascade.
func (h *IngestHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" && req.S3URL == "" {
		http.Error(w, "path or s3_url required", http.StatusBadRequest)
		return
	}

	var preferred extraction_engine.Method
	if req.Strategy != "" {
		m, err := extraction_engine.ParseMethod(req.Strategy)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		preferred = m
	}

	path := req.Path
	if req.S3URL != "" {
		staged, cleanup, err := h.stageS3(r, req.S3URL)
		if err != nil {
			h.logger.Error("stage s3 object", "url", req.S3URL, "err", err)
			http.Error(w, "could not fetch document", http.StatusBadGateway)
			return
		}
		defer cleanup()
		path = staged
	}

	result, err := h.svc.IngestFile(r.Context(), path, preferred, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFile), errors.Is(err, services.ErrNoText):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("ingest failed", "path", path, "err", err)
			http.Error(w, "ingestion failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *IngestHandler) stageS3(r *http.Request, url string) (string, func(), error) {
	if h.obj == nil {
		return "", nil, errors.New("object storage not configured")
	}
	bucket, key, ok := objectclient.ParseS3URL(url)
	if !ok {
		return "", nil, errors.New("unrecognized s3 url")
	}
	data, err := h.obj.GetFile(r.Context(), bucket, key)
	if err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", "ingesta-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	f.Close()
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
