package dto

// VoteRequest casts a vote on a door's poll.
type VoteRequest struct {
	Option string `json:"option" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}
