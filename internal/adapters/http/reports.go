package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/usecase"
)

const (
	uploadField      = "file"
	sectionSeparator = "\n\n=========================\n\n"
	// multipart parts above this size spill to temporary files
	multipartMemory = 8 << 20
)

func (rt *Router) processTesting(w http.ResponseWriter, r *http.Request) {
	results, err := rt.processUploads(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sections := make([]string, 0, len(results))
	for _, res := range results {
		sections = append(sections, fmt.Sprintf("📄 %s (%s)\n\n%s", res.Filename, res.DocumentType, res.SummaryHTML))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strings.Join(sections, sectionSeparator)))
}

func (rt *Router) processReports(w http.ResponseWriter, r *http.Request) {
	results, err := rt.processUploads(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// processUploads runs every uploaded file through the pipeline sequentially, in upload order.
func (rt *Router) processUploads(w http.ResponseWriter, r *http.Request) ([]domain.DocumentResult, error) {
	files, err := rt.parseUploads(w, r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	results := make([]domain.DocumentResult, 0, len(files))
	for _, fh := range files {
		results = append(results, rt.processPart(r.Context(), fh))
	}
	return results, nil
}

func (rt *Router) parseUploads(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, error) {
	const op = "http.parseUploads"

	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.WrapError(domain.ErrPayloadTooLarge, op, err)
		}
		return nil, domain.WrapError(domain.ErrNoFile, op, err)
	}

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		_ = r.MultipartForm.RemoveAll()
		return nil, domain.WrapError(domain.ErrNoFile, op, errors.New("multipart field 'file' is missing"))
	}
	if rt.maxFiles > 0 && len(files) > rt.maxFiles {
		_ = r.MultipartForm.RemoveAll()
		return nil, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("at most %d files per request", rt.maxFiles))
	}
	return files, nil
}

func (rt *Router) processPart(ctx context.Context, fh *multipart.FileHeader) domain.DocumentResult {
	f, err := fh.Open()
	if err != nil {
		return domain.DocumentResult{
			Filename:     usecase.SanitizeFilename(fh.Filename),
			DocumentType: domain.DocumentUnreadable,
			SummaryHTML:  usecase.StorageFailureNotice,
			Outcome:      domain.OutcomeFailed,
			Error:        fmt.Sprintf("open upload: %v", err),
		}
	}
	defer f.Close()

	return rt.processor.ProcessFile(ctx, fh.Filename, fh.Header.Get("Content-Type"), f)
}
