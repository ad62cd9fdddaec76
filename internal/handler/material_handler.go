package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/response"
	"github.com/nevtik/eduvate-backend/internal/service"
	"github.com/nevtik/eduvate-backend/internal/validator"
)

// MaterialHandler handles learning material endpoints.
type MaterialHandler struct {
	materialService *service.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(materialService *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// Create godoc
// POST /api/materials
// Staff uploads a material. Multipart with title, description, an optional
// external_url, and an optional "file" upload.
func (h *MaterialHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	title := c.PostForm("title")
	if len(title) < 3 || len(title) > 200 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"title": "title must be between 3 and 200 characters"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		file, header = nil, nil
	} else {
		defer file.Close()
	}

	material, err := h.materialService.Create(c.Request.Context(), claims.UserID,
		title, c.PostForm("description"), c.PostForm("external_url"), file, header)
	if err != nil {
		failUpload(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"material": material})
}

// List godoc
// GET /api/materials
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.materialService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if materials == nil {
		materials = []model.Material{}
	}
	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// Get godoc
// GET /api/materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	material, err := h.materialService.Get(c.Request.Context(), materialID)
	if err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// Update godoc
// PUT /api/materials/:id
// Metadata only; the stored file is immutable.
func (h *MaterialHandler) Update(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateMaterialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	material, err := h.materialService.Update(c.Request.Context(), materialID, &req)
	if err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// Delete godoc
// DELETE /api/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), materialID); err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Materi dihapus."})
}
