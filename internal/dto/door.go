package dto

import (
	"encoding/json"

	"github.com/noah-isme/advent-api/internal/models"
)

// ParseDoorState decodes the optional client-state query parameter. The
// state is an untrusted rendering hint; a malformed value is treated as no
// state rather than an error.
func ParseDoorState(raw string) models.DoorState {
	if raw == "" {
		return nil
	}
	state := models.DoorState{}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil
	}
	return state
}
