package dto

import "github.com/noah-isme/advent-api/internal/models"

// UploadedFile carries the stored bytes and original name of an upload.
// Multipart transport details stay at the handler.
type UploadedFile struct {
	Name string
	Data []byte
}

// UploadContentRequest is the admin upload payload after transport parsing.
type UploadContentRequest struct {
	ContentType   string   `form:"contentType" json:"contentType" validate:"required,oneof=text image video audio gif poll puzzle countdown iframe"`
	Text          string   `form:"text" json:"text"`
	Question      string   `form:"question" json:"question"`
	Options       []string `form:"options" json:"options"`
	Date          string   `form:"date" json:"date"`
	CountdownText string   `form:"countdownText" json:"countdownText"`
	URL           string   `form:"url" json:"url"`
	Message       string   `form:"message" json:"message"`

	File        *UploadedFile `form:"-" json:"-"`
	PuzzleImage *UploadedFile `form:"-" json:"-"`
}

// UploadContentResponse confirms what was stored for the door.
type UploadContentResponse struct {
	Door     int                `json:"door"`
	Type     models.ContentKind `json:"type"`
	Filename string             `json:"filename"`
}

// PollSummary condenses a poll for the admin door overview.
type PollSummary struct {
	Question   string `json:"question"`
	Options    int    `json:"options"`
	TotalVotes int    `json:"totalVotes"`
}

// AdminDoorView lists one door for the admin UI, ignoring the availability
// gate and carrying a signed preview token for the original file.
type AdminDoorView struct {
	Door           int                `json:"door"`
	Type           models.ContentKind `json:"type"`
	Filename       string             `json:"filename,omitempty"`
	PreviewToken   string             `json:"previewToken,omitempty"`
	Available      bool               `json:"available"`
	HasMessage     bool               `json:"hasMessage"`
	Poll           *PollSummary       `json:"poll,omitempty"`
	PuzzleImage    string             `json:"puzzleImage,omitempty"`
	PuzzlePreview  string             `json:"puzzlePreviewToken,omitempty"`
}

// ClearThumbnailsResponse reports the result of a cache wipe.
type ClearThumbnailsResponse struct {
	Deleted int   `json:"deleted"`
	ResetAt int64 `json:"resetAt"`
}
