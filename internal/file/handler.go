package file

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/filebox/service/internal/response"
)

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a file Handler enforcing maxUploadBytes on proxied uploads.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

type listData struct {
	Bucket string    `json:"bucket"`
	Files  []Summary `json:"files"`
	Count  int       `json:"count"`
}

type deleteData struct {
	Deleted string `json:"deleted"`
}

// Upload accepts a multipart request with exactly one "file" field, streams it
// to the object store, and responds with the assigned key.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		response.BadRequest(w, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if n := fileFieldCount(r); n != 1 {
		response.BadRequest(w, "request must carry exactly one file field")
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file field")
		return
	}
	defer f.Close()

	stored, err := h.svc.Store(r.Context(), f, hdr.Size, hdr.Filename, hdr.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("upload failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "store failed")
		return
	}

	response.Created(w, stored)
}

// Download streams the object at the requested key back to the client.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "filename")

	dl, err := h.svc.Retrieve(r.Context(), key)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		log.Printf("download failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "retrieval failed")
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	if dl.OriginalName != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", dl.OriginalName))
	}
	if _, err := io.Copy(w, dl.Body); err != nil {
		// Headers are already out; all we can do is log the broken stream.
		log.Printf("streaming %q aborted: %v", key, err)
	}
}

// List returns every object in the bucket with whatever metadata could be recovered.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("list failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "listing failed")
		return
	}

	response.OK(w, listData{Bucket: h.svc.Bucket(), Files: files, Count: len(files)})
}

// Delete removes the object at the requested key.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "filename")

	if err := h.svc.Delete(r.Context(), key); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		log.Printf("delete failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "deletion failed")
		return
	}

	response.OK(w, deleteData{Deleted: key})
}

// UploadURL issues a pre-signed PUT URL so the client can upload directly to the store.
func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	grant, err := h.svc.UploadURL(r.Context(), filename)
	if err != nil {
		log.Printf("upload-url failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "could not issue upload url")
		return
	}

	response.OK(w, grant)
}

// DownloadURL issues a pre-signed GET URL for an existing (or not) key.
func (h *Handler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "fileKey")

	grant, err := h.svc.DownloadURL(r.Context(), key)
	if err != nil {
		log.Printf("download-url failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "could not issue download url")
		return
	}

	response.OK(w, Grant{URL: grant.URL})
}

func fileFieldCount(r *http.Request) int {
	n := 0
	for _, headers := range r.MultipartForm.File {
		n += len(headers)
	}
	return n
}
