package web

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/propimport/internal/core"
	"github.com/JonMunkholm/propimport/internal/logging"
)

// maxFormMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const maxFormMemory = 8 << 20

// upload is a validated csv_file form part.
type upload struct {
	file     multipart.File
	header   *multipart.FileHeader
	encoding string
}

// handleImport accepts a CSV upload in the csv_file form field and runs it
// through the importer. The optional encoding field names the source
// character set, falling back to the configured default.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.withUpload(w, r, func(ctx context.Context, up upload) error {
		result, err := s.importer.RunEncoded(ctx, up.file, up.encoding)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, result)
		return nil
	})
}

// handlePreview validates an upload like handleImport but writes nothing.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.withUpload(w, r, func(ctx context.Context, up upload) error {
		resp, err := s.importer.Preview(ctx, up.file, up.encoding)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, resp)
		return nil
	})
}

// withUpload parses and checks the upload, takes an import slot and calls fn
// under the import timeout. Any error is written as an error response.
func (s *Server) withUpload(w http.ResponseWriter, r *http.Request, fn func(context.Context, upload) error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, tooLarge.Limit))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("csv_file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer file.Close()

	if !isCSV(header) {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnsupportedFile, header.Filename))
		return
	}

	encoding := strings.TrimSpace(r.FormValue("encoding"))
	if encoding == "" {
		encoding = s.cfg.Import.SourceEncoding
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		w.Header().Set("Retry-After", "30")
		s.respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	logging.FromContext(ctx).Info("upload received",
		"path", r.URL.Path,
		"filename", header.Filename,
		"size", header.Size,
		"encoding", encoding,
	)

	if err := fn(ctx, upload{file: file, header: header, encoding: encoding}); err != nil {
		s.respondError(w, r, err)
	}
}

// isCSV accepts a part declared as text/csv or named *.csv.
func isCSV(header *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/csv"
}
