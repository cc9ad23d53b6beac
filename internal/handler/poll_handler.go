package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/advent-api/internal/dto"
	"github.com/noah-isme/advent-api/internal/service"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
	"github.com/noah-isme/advent-api/pkg/response"
)

type pollService interface {
	Get(ctx context.Context, door int, userID string) (*service.PollView, error)
	Vote(ctx context.Context, door int, option, userID string) (*service.VoteResult, error)
}

// PollHandler exposes the public poll endpoints.
type PollHandler struct {
	service pollService
}

// NewPollHandler builds a new handler.
func NewPollHandler(service pollService) *PollHandler {
	return &PollHandler{service: service}
}

// Get godoc
// @Summary Get a door's poll with tallies
// @Tags Polls
// @Produce json
// @Param door path int true "Door number"
// @Param userId query string false "Voter identity"
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /doors/{door}/poll [get]
func (h *PollHandler) Get(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Get(c.Request.Context(), door, c.Query("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Vote godoc
// @Summary Cast a vote on a door's poll
// @Tags Polls
// @Accept json
// @Produce json
// @Param door path int true "Door number"
// @Param payload body dto.VoteRequest true "Vote payload"
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /doors/{door}/poll/vote [post]
func (h *PollHandler) Vote(c *gin.Context) {
	door, err := doorParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vote payload"))
		return
	}
	result, err := h.service.Vote(c.Request.Context(), door, req.Option, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
