package models

import (
	"time"

	"github.com/google/uuid"
)

// AreaAnalysis is the LLM's summary for a single area
type AreaAnalysis struct {
	Area string
	Text string
}

// Report is the outcome of one pipeline run
type Report struct {
	RunID       uuid.UUID
	GeneratedAt time.Time
	Areas       []AreaAnalysis
	Summary     string
	DetailText  string
	Email       *Email
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Email is a fully rendered message ready for a mailer
type Email struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}
