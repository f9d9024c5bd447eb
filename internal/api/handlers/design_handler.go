package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/auth"
	"github.com/auric/jewelry-be/internal/models"
	"github.com/auric/jewelry-be/internal/services"
	"github.com/auric/jewelry-be/internal/uploads"
)

// DesignHandler handles HTTP requests for custom design submissions. All
// routes require an authenticated user; the triage routes additionally
// require the admin role.
type DesignHandler struct {
	service services.DesignServiceProvider
	files   *uploads.Store
}

// NewDesignHandler creates a new DesignHandler.
func NewDesignHandler(service services.DesignServiceProvider, files *uploads.Store) *DesignHandler {
	return &DesignHandler{service: service, files: files}
}

// Create handles a design submission with an optional reference image.
func (h *DesignHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		respondError(w, r, apperr.Unauthenticated("authentication required"))
		return
	}

	stored, err := h.files.Save(r, "reference_image", uploads.CategoryDesigns)
	if err != nil {
		respondError(w, r, err)
		return
	}

	design := models.Design{
		DesignName:         r.FormValue("design_name"),
		MaterialPreference: r.FormValue("material_preference"),
		Description:        r.FormValue("description"),
	}
	design.ApproximateWeight, _ = strconv.ParseFloat(r.FormValue("approximate_weight"), 64)
	if stored != nil {
		design.ReferenceImage = stored.Filename
	}

	if design.DesignName == "" {
		h.discard(stored)
		respondError(w, r, apperr.Validation("design name is required"))
		return
	}

	created, err := h.service.CreateDesign(user.ID, design)
	if err != nil {
		h.discard(stored)
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"design": created})
}

// GetMine lists the authenticated user's own design requests.
func (h *DesignHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		respondError(w, r, apperr.Unauthenticated("authentication required"))
		return
	}

	designs, err := h.service.GetUserDesigns(user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"designs": designs, "count": len(designs)})
}

// Get retrieves a single design. Ownership is enforced in the service:
// users see their own, admins see all.
func (h *DesignHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		respondError(w, r, apperr.Unauthenticated("authentication required"))
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	design, err := h.service.GetDesign(id, user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"design": design})
}

// GetAll lists every design request for admin triage.
func (h *DesignHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	designs, err := h.service.GetAllDesigns()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"designs": designs, "count": len(designs)})
}

// UpdateStatus moves a design through the triage flow.
func (h *DesignHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	design, err := h.service.UpdateDesignStatus(id, payload.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"design": design})
}

func (h *DesignHandler) discard(stored *uploads.StoredFile) {
	if stored == nil {
		return
	}
	if err := h.files.Remove(uploads.CategoryDesigns, stored.Filename); err != nil {
		log.Warn().Err(err).Str("filename", stored.Filename).Msg("Failed to discard orphaned upload")
	}
}
