package domain

import "strings"

// ValidateDocument checks that a SourceDocument can be ingested.
func ValidateDocument(d SourceDocument) error {
	if strings.TrimSpace(d.Filename) == "" {
		return NewValidationError("filename", d.Filename, ErrMissingFilename)
	}
	if strings.TrimSpace(d.Text) == "" {
		return NewValidationError("text", d.Filename, ErrEmptyDocument)
	}
	return nil
}

// ValidateQuestion checks that a question string is answerable.
func ValidateQuestion(q string) error {
	if strings.TrimSpace(q) == "" {
		return NewValidationError("question", q, ErrEmptyQuestion)
	}
	return nil
}
