package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/advent-api/internal/dto"
	"github.com/noah-isme/advent-api/internal/models"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
	"github.com/noah-isme/advent-api/pkg/response"
)

type doorService interface {
	Listing(ctx context.Context, state models.DoorState) (models.Listing, time.Time, error)
	Door(ctx context.Context, door int, state models.DoorState) (models.DoorContent, error)
	MediaFile(ctx context.Context, door int) (string, error)
	PuzzleImageFile(ctx context.Context, door int) (string, error)
	StoredContent(ctx context.Context, door int) (string, models.ContentKind, error)
}

type thumbnailService interface {
	Generate(ctx context.Context, filename string, kind models.ContentKind) (string, error)
}

// DoorHandler exposes the public calendar endpoints.
type DoorHandler struct {
	doors  doorService
	thumbs thumbnailService
}

// NewDoorHandler builds a new handler.
func NewDoorHandler(doors doorService, thumbs thumbnailService) *DoorHandler {
	return &DoorHandler{doors: doors, thumbs: thumbs}
}

// List godoc
// @Summary List all doors with resolved content
// @Tags Doors
// @Produce json
// @Param state query string false "Client door state as JSON"
// @Success 200 {object} response.Envelope
// @Router /doors [get]
func (h *DoorHandler) List(c *gin.Context) {
	state := dto.ParseDoorState(c.Query("state"))
	listing, createdAt, err := h.doors.Listing(c.Request.Context(), state)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, map[string]interface{}{"generatedAt": createdAt})
}

// Get godoc
// @Summary Get a single door's content
// @Tags Doors
// @Produce json
// @Param door path int true "Door number"
// @Param state query string false "Client door state as JSON"
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /doors/{door} [get]
func (h *DoorHandler) Get(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	state := dto.ParseDoorState(c.Query("state"))
	content, err := h.doors.Door(c.Request.Context(), door, state)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content)
}

// Media godoc
// @Summary Stream a door's media file
// @Tags Doors
// @Produce octet-stream
// @Param door path int true "Door number"
// @Success 200 {file} binary
// @Failure 423 {object} response.Envelope
// @Router /doors/{door}/media [get]
func (h *DoorHandler) Media(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	path, err := h.doors.MediaFile(c.Request.Context(), door)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}

// Thumbnail godoc
// @Summary Serve a door's thumbnail, deriving it on first use
// @Tags Doors
// @Produce octet-stream
// @Param door path int true "Door number"
// @Success 200 {file} binary
// @Failure 423 {object} response.Envelope
// @Router /doors/{door}/thumbnail [get]
func (h *DoorHandler) Thumbnail(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	// The gate and existence checks ride on the media lookup.
	mediaPath, err := h.doors.MediaFile(c.Request.Context(), door)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename, kind, err := h.doors.StoredContent(c.Request.Context(), door)
	if err != nil {
		response.Error(c, err)
		return
	}
	thumbPath, err := h.thumbs.Generate(c.Request.Context(), filename, kind)
	if err != nil || thumbPath == "" {
		// No derivable preview: fall back to the original file.
		c.File(mediaPath)
		return
	}
	c.File(thumbPath)
}

// PuzzleImage godoc
// @Summary Stream a puzzle door's source image
// @Tags Doors
// @Produce octet-stream
// @Param door path int true "Door number"
// @Success 200 {file} binary
// @Failure 423 {object} response.Envelope
// @Router /doors/{door}/puzzle-image [get]
func (h *DoorHandler) PuzzleImage(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	path, err := h.doors.PuzzleImageFile(c.Request.Context(), door)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}

func doorParam(c *gin.Context) (int, error) {
	door, err := strconv.Atoi(c.Param("door"))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "door must be a number")
	}
	return door, nil
}
