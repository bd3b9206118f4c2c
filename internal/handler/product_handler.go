package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"product-service/internal/model"
	"product-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies for create and update.
const maxBodyBytes = 1 << 20

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Create(r.Context(), h.decodeRequest(w, r))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Update(r.Context(), id, h.decodeRequest(w, r))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: model.MsgDeleted})
}

// Search handles GET /api/products/search?q= requests. A missing q matches everything.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// productID extracts the numeric {id} path parameter. The route pattern only
// admits digits, so the sole parse failure is an id beyond int64, which no
// product can have.
func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		h.logger.Debug().Str("id", raw).Msg("unparseable product id")
		writeError(w, http.StatusNotFound, MsgNotFound, h.logger)
		return 0, false
	}

	return id, true
}

// decodeRequest reads a create or update body. An empty, malformed or
// oversized body, trailing data after the JSON object, and a name that is null or not a string, all decode to a
// request without a name, which the service rejects.
func (h *ProductHandler) decodeRequest(w http.ResponseWriter, r *http.Request) *model.ProductRequest {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)

	var req model.ProductRequest
	if err := dec.Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		return &model.ProductRequest{}
	}

	// Anything after the first JSON value makes the body malformed.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		h.logger.Debug().Err(err).Msg("trailing data after request body")
		return &model.ProductRequest{}
	}

	return &req
}
