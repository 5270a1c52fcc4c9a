package post

import (
	"encoding/json"
	"net/http"

	"github.com/filebox/service/internal/response"
)

// Handler holds HTTP handlers for post endpoints.
type Handler struct {
	reg *Register
}

// NewHandler creates a new post Handler.
func NewHandler(reg *Register) *Handler {
	return &Handler{reg: reg}
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileKey     string `json:"fileKey"`
}

// Create records a post confirming a completed direct upload.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p := h.reg.Append(req.Title, req.Description, req.FileKey)

	response.Created(w, p)
}

// List returns all recorded posts in creation order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.reg.List())
}
