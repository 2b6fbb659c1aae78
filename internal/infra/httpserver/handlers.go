package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/callprep/internal/application/analysis"
	appfiles "github.com/bryanwahyu/callprep/internal/application/files"
	"github.com/bryanwahyu/callprep/internal/domain/analyses"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeJSON(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", apperr.ErrValidation, err)
	}
	return nil
}

func owner(req *http.Request) (string, error) {
	user := middleware.GetUserFromContext(req.Context())
	if user == "" {
		return "", apperr.ErrUnauthorized
	}
	return user, nil
}

// pathID reads a UUID path parameter; malformed ids are reported as not found.
func pathID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateID(id); err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	return id, nil
}

// GET /customers
func (r *Router) handleListCustomers(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	list, err := r.svc.Customers.List(req.Context(), user)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /customers
// Body: {"name": "Acme Corp"}
func (r *Router) handleCreateCustomer(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	c, err := r.svc.Customers.Create(req.Context(), user, middleware.SanitizeString(body.Name))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, c)
}

// GET /customers/{id}
func (r *Router) handleGetCustomer(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	id, err := pathID(req)
	if err != nil {
		return err
	}
	c, err := r.svc.Customers.Get(req.Context(), user, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, c)
}

// GET /customers/{id}/files
func (r *Router) handleListFiles(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	id, err := pathID(req)
	if err != nil {
		return err
	}
	list, err := r.svc.Files.List(req.Context(), user, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /customers/{id}/files
// Multipart form: file | emailContent | transcriptContent, optional occurredAt and notes.
func (r *Router) handleAddFile(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	id, err := pathID(req)
	if err != nil {
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return formError(err)
		}
		if err := req.ParseForm(); err != nil {
			return formError(err)
		}
	}
	if req.MultipartForm != nil {
		defer req.MultipartForm.RemoveAll()
	}

	occurredAt, err := middleware.ParseOccurredAt(req.FormValue("occurredAt"))
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	cmd := appfiles.AddFileCommand{
		OwnerID:           user,
		CustomerID:        id,
		EmailContent:      req.FormValue("emailContent"),
		TranscriptContent: req.FormValue("transcriptContent"),
		OccurredAt:        occurredAt,
		Notes:             middleware.SanitizeString(req.FormValue("notes")),
	}

	file, hdr, err := req.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		cmd.Upload = upload(file, hdr)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return formError(err)
	}

	f, err := r.svc.Files.Add(req.Context(), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, f)
}

func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return fmt.Errorf("%w: body exceeds %d bytes", apperr.ErrTooLarge, tooBig.Limit)
	}
	return fmt.Errorf("%w: reading form: %v", apperr.ErrValidation, err)
}

func upload(file multipart.File, hdr *multipart.FileHeader) *appfiles.Upload {
	return &appfiles.Upload{
		Name:        middleware.SanitizeFilename(hdr.Filename),
		Size:        hdr.Size,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        file,
	}
}

// GET /customers/{id}/analyses?page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	id, err := pathID(req)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.Analysis.List(req.Context(), user, id,
		middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /transcribe
// Body: {"fileId": "<id>"}
func (r *Router) handleTranscribe(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	var body struct {
		FileID string `json:"fileId"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if body.FileID == "" {
		return fmt.Errorf("%w: fileId is required", apperr.ErrValidation)
	}
	if middleware.ValidateID(body.FileID) != nil {
		return fmt.Errorf("%w: file %s", apperr.ErrNotFound, body.FileID)
	}

	res, err := r.svc.Transcription.Transcribe(req.Context(), user, body.FileID)
	if err != nil {
		return err
	}
	if res.File.Content == nil {
		return writeJSON(w, http.StatusAccepted, res)
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /analyze
// Body: {"customerId": "<id>", "fileIds": ["<id>", ...]}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	var body struct {
		CustomerID string   `json:"customerId"`
		FileIDs    []string `json:"fileIds"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if middleware.ValidateID(body.CustomerID) != nil {
		return fmt.Errorf("%w: customer %s", apperr.ErrNotFound, body.CustomerID)
	}

	a, err := r.svc.Analysis.Generate(req.Context(), analysis.GenerateCommand{
		OwnerID:    user,
		CustomerID: body.CustomerID,
		FileIDs:    body.FileIDs,
	})
	// only model outcomes count; lookups and empty bundles do not
	if err == nil || errors.Is(err, apperr.ErrAnalysisGeneration) {
		middleware.RecordAnalysis(err)
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, a)
}

// analysisView adds the ordered, non-empty sections for display.
type analysisView struct {
	*analyses.Analysis
	Sections []analyses.DisplaySection `json:"sections"`
}

// GET /analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	id, err := pathID(req)
	if err != nil {
		return err
	}
	a, err := r.svc.Analysis.Get(req.Context(), user, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, analysisView{Analysis: a, Sections: a.Content.Display()})
}

// POST /analyses/{id}/reparse
// Returns the stored fullText parsed with the current schema. Nothing is written.
func (r *Router) handleReparse(w http.ResponseWriter, req *http.Request) error {
	user, err := owner(req)
	if err != nil {
		return err
	}
	id, err := pathID(req)
	if err != nil {
		return err
	}
	c, err := r.svc.Analysis.Reparse(req.Context(), user, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, struct {
		Content  analyses.Content          `json:"content"`
		Sections []analyses.DisplaySection `json:"sections"`
	}{c, c.Display()})
}
