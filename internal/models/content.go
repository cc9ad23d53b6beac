package models

// ContentKind classifies what a door reveals once it is open.
type ContentKind string

const (
	KindText         ContentKind = "text"
	KindImage        ContentKind = "image"
	KindVideo        ContentKind = "video"
	KindAudio        ContentKind = "audio"
	KindGif          ContentKind = "gif"
	KindPoll         ContentKind = "poll"
	KindPuzzle       ContentKind = "puzzle"
	KindCountdown    ContentKind = "countdown"
	KindIframe       ContentKind = "iframe"
	KindNotAvailable ContentKind = "not available yet"
)

// PuzzleImageOffset shifts a door index into the registry slot holding the
// puzzle's source image. A puzzle door occupies two slots: the marker file at
// the door index and the image at index+offset.
const PuzzleImageOffset = 1000

// Sentinel bodies stored as a file's entire content to signal a non-literal
// content type to the resolver.
const (
	SentinelPoll      = "<[poll]>"
	SentinelPuzzle    = "<[puzzle]>"
	SentinelCountdown = "<[countdown]>"
	SentinelIframe    = "<[iframe]>"
)

// DoorContent is the per-door resolution result served to clients.
type DoorContent struct {
	Type       ContentKind `json:"type"`
	Data       *string     `json:"data"`
	Text       *string     `json:"text"`
	Thumbnail  *string     `json:"thumbnail"`
	FullImage  *string     `json:"fullImage,omitempty"`
	TargetDate *string     `json:"targetDate,omitempty"`
	IsSolved   *bool       `json:"isSolved,omitempty"`
}

// DoorHint carries client-held state for a single door. It is an untrusted
// rendering hint and never participates in access control.
type DoorHint struct {
	Win bool `json:"win"`
}

// DoorState maps door indices to client hints.
type DoorState map[int]DoorHint

// Listing is the full door-index keyed snapshot served by the listing read.
type Listing map[int]DoorContent

// IsMedia reports whether the kind is backed by a binary media file.
func (k ContentKind) IsMedia() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindGif:
		return true
	default:
		return false
	}
}

// HasThumbnail reports whether the kind produces a derived preview image.
func (k ContentKind) HasThumbnail() bool {
	switch k {
	case KindImage, KindVideo, KindGif, KindPuzzle:
		return true
	default:
		return false
	}
}
