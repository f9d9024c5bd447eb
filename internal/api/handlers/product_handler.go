package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/models"
	"github.com/auric/jewelry-be/internal/services"
	"github.com/auric/jewelry-be/internal/uploads"
)

// ProductHandler handles HTTP requests for the product catalog. Mutating
// routes accept multipart form data with an optional "image" file field.
type ProductHandler struct {
	service services.ProductServiceProvider
	files   *uploads.Store
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service services.ProductServiceProvider, files *uploads.Store) *ProductHandler {
	return &ProductHandler{service: service, files: files}
}

// GetAll handles the public, paginated product listing.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.GetProducts(services.ProductFilter{
		Category:     q.Get("category"),
		Availability: q.Get("availability"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get handles the request to get a single product by its ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

// Create handles the admin request to add a product. The image, when
// present, is validated and stored before the row is written; if the insert
// fails, the stored file is unlinked again.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	stored, err := h.files.Save(r, "image", uploads.CategoryProducts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	product := models.Product{
		Name:         r.FormValue("name"),
		Category:     r.FormValue("category"),
		Description:  r.FormValue("description"),
		Availability: r.FormValue("availability"),
	}
	product.Grams, _ = strconv.ParseFloat(r.FormValue("grams"), 64)
	product.Wastage, _ = strconv.ParseFloat(r.FormValue("wastage"), 64)
	if stored != nil {
		product.Image = stored.Filename
	}

	if product.Name == "" {
		h.discard(stored)
		respondError(w, r, apperr.Validation("product name is required"))
		return
	}

	created, err := h.service.CreateProduct(product)
	if err != nil {
		h.discard(stored)
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"product": created})
}

// Update handles the admin request to modify a product. Only fields present
// in the form are touched; a new image replaces and unlinks the old one.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	stored, err := h.files.Save(r, "image", uploads.CategoryProducts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var upd services.ProductUpdate
	if v, ok := formValue(r, "name"); ok {
		upd.Name = &v
	}
	if v, ok := formValue(r, "category"); ok {
		upd.Category = &v
	}
	if v, ok := formValue(r, "description"); ok {
		upd.Description = &v
	}
	if v, ok := formValue(r, "availability"); ok {
		upd.Availability = &v
	}
	if v, ok := formValue(r, "grams"); ok {
		grams, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.discard(stored)
			respondError(w, r, apperr.Validation("grams must be a number"))
			return
		}
		upd.Grams = &grams
	}
	if v, ok := formValue(r, "wastage"); ok {
		wastage, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.discard(stored)
			respondError(w, r, apperr.Validation("wastage must be a number"))
			return
		}
		upd.Wastage = &wastage
	}
	if stored != nil {
		upd.Image = &stored.Filename
	}

	product, err := h.service.UpdateProduct(id, upd)
	if err != nil {
		h.discard(stored)
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

// Delete handles the admin request to remove a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.service.DeleteProduct(id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// GetCategories handles the public category listing.
func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// discard removes a stored upload whose owning row never materialized.
func (h *ProductHandler) discard(stored *uploads.StoredFile) {
	if stored == nil {
		return
	}
	if err := h.files.Remove(uploads.CategoryProducts, stored.Filename); err != nil {
		log.Warn().Err(err).Str("filename", stored.Filename).Msg("Failed to discard orphaned upload")
	}
}

// parseID reads the {id} route parameter.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("id must be a positive integer")
	}
	return id, nil
}

// formValue reports a form field and whether the request carried it at all,
// so partial updates can distinguish "absent" from "empty".
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
