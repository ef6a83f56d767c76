package domain

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     SourceDocument
		wantErr error
	}{
		{"valid", SourceDocument{Filename: "a.html", Text: "body"}, nil},
		{"missing filename", SourceDocument{Text: "body"}, ErrMissingFilename},
		{"blank filename", SourceDocument{Filename: "  ", Text: "body"}, ErrMissingFilename},
		{"empty text", SourceDocument{Filename: "a.html"}, ErrEmptyDocument},
		{"blank text", SourceDocument{Filename: "a.html", Text: "\n\t "}, ErrEmptyDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if !IsValidation(err) {
				t.Error("expected a ValidationError")
			}
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	if err := ValidateQuestion("what satellites exist?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateQuestion("   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("got %v, want ErrEmptyQuestion", err)
	}
}
