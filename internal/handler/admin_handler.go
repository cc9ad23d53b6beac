package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/advent-api/internal/dto"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
	"github.com/noah-isme/advent-api/pkg/response"
)

type adminService interface {
	Upload(ctx context.Context, door int, req dto.UploadContentRequest) (*dto.UploadContentResponse, error)
	Delete(ctx context.Context, door int) error
	Doors(ctx context.Context) ([]dto.AdminDoorView, error)
	ResolvePreview(token string) (string, error)
	ClearThumbnails(ctx context.Context) (*dto.ClearThumbnailsResponse, error)
}

// AdminHandler exposes the protected content management endpoints.
type AdminHandler struct {
	service   adminService
	maxUpload int64
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(service adminService, maxUpload int64) *AdminHandler {
	return &AdminHandler{service: service, maxUpload: maxUpload}
}

// Doors godoc
// @Summary List all doors for management
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/doors [get]
func (h *AdminHandler) Doors(c *gin.Context) {
	views, err := h.service.Doors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// Upload godoc
// @Summary Replace a door's content
// @Tags Admin
// @Accept mpfd
// @Produce json
// @Param door path int true "Door number"
// @Param contentType formData string true "Content type"
// @Param file formData file false "Media file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/doors/{door} [post]
func (h *AdminHandler) Upload(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UploadContentRequest
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload form"))
			return
		}
		if req.File, err = h.formFile(c, "file"); err != nil {
			response.Error(c, err)
			return
		}
		if req.PuzzleImage, err = h.formFile(c, "puzzleImage"); err != nil {
			response.Error(c, err)
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload payload"))
			return
		}
	}

	res, err := h.service.Upload(c.Request.Context(), door, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Delete godoc
// @Summary Delete a door's content and dependent artifacts
// @Tags Admin
// @Produce json
// @Param door path int true "Door number"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/doors/{door} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), door); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearThumbnails godoc
// @Summary Wipe the thumbnail cache
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/thumbnails/clear [post]
func (h *AdminHandler) ClearThumbnails(c *gin.Context) {
	res, err := h.service.ClearThumbnails(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Preview godoc
// @Summary Stream a stored file by signed preview token
// @Tags Admin
// @Produce octet-stream
// @Param token path string true "Signed preview token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /admin/media/{token} [get]
func (h *AdminHandler) Preview(c *gin.Context) {
	path, err := h.service.ResolvePreview(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}

// formFile reads an optional multipart file into memory, enforcing the
// configured upload ceiling.
func (h *AdminHandler) formFile(c *gin.Context, field string) (*dto.UploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("invalid %s upload", field))
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds the %d byte upload limit", field, h.maxUpload))
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	return &dto.UploadedFile{Name: header.Filename, Data: data}, nil
}
