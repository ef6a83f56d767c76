// Package domain holds the shared document types and validation rules
// for the ingestion and question-answering flows.
package domain

// SourceDocument is one harvested page handed to the ingestion pipeline.
// Filename is the stable key used for provenance tracking; Text is the
// extracted body the language model sees.
type SourceDocument struct {
	Filename string `json:"file"`
	Title    string `json:"title"`
	Text     string `json:"text_preview"`
}
