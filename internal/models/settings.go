package models

// Settings holds calendar-wide configuration. Singleton, created with
// defaults on first read.
type Settings struct {
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}
