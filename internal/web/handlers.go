package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/archbyuk/dermacare-engine-sub000/internal/importer"
	"github.com/archbyuk/dermacare-engine-sub000/internal/logging"
)

// importRequest is the JSON body of a URL-driven import call.
type importRequest struct {
	URLs []string `json:"urls"`
}

// handleImport accepts either a multipart form with one or more files under
// the "files" field, or a JSON body listing URLs to download. The optional
// clear_first query flag truncates the target tables of the submitted files
// before inserting.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	clearFirst := r.URL.Query().Get("clear_first") == "true"

	var files []importer.File

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		var err error
		files, err = s.readMultipart(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

	case strings.HasPrefix(contentType, "application/json"):
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if len(req.URLs) == 0 {
			writeError(w, http.StatusBadRequest, "no urls provided")
			return
		}
		var err error
		files, err = s.fetcher.FetchAll(ctx, req.URLs)
		if err != nil {
			logger.Warn("download failed", "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

	default:
		writeError(w, http.StatusUnsupportedMediaType,
			"expected multipart/form-data or application/json")
		return
	}

	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	outcome := s.service.ImportBatch(ctx, files, clearFirst)

	status := http.StatusOK
	if outcome.Status == importer.BatchAllFailed {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, outcome)
}

// readMultipart collects the uploaded files from a multipart form, honoring
// the configured per-file size cap.
func (s *Server) readMultipart(r *http.Request) ([]importer.File, error) {
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, fmt.Errorf("no files provided under field %q", "files")
	}

	files := make([]importer.File, 0, len(headers))
	for _, hdr := range headers {
		data, err := readFileHeader(hdr, s.cfg.Import.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", hdr.Filename, err)
		}
		files = append(files, importer.File{Name: hdr.Filename, Data: data})
	}
	return files, nil
}

func readFileHeader(hdr *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := hdr.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d byte limit", limit)
	}
	return data, nil
}

// truncateRequest names the tables to clear. An empty or absent list means
// every registered table.
type truncateRequest struct {
	Tables []string `json:"tables"`
}

// handleTruncate empties the requested target tables in one transaction and
// reports how many rows each table gave up.
func (s *Server) handleTruncate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req truncateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	counts, err := s.service.Truncate(ctx, req.Tables)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownTable) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("truncate failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"cleared": counts,
	})
}

// handleListTables reports the tables the service can import into.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": s.service.Tables(),
	})
}

// handleHealth pings the database pool.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
