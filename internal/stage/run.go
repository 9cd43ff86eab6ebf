package stage

import (
	"learnpod/internal/document"
	"learnpod/internal/services"
)

// Stage names in execution order.
const (
	NameIngest    = "ingest"
	NameScript    = "script"
	NameExplainer = "explainer"
	NameQuestions = "questions"
	NameAudio     = "audio"
	NameEmail     = "email"
)

// Run is the state one pipeline run shares across its stages. The
// orchestrator owns it; stages read the document and record what they produce.
type Run struct {
	ID        string
	InputPath string
	OutputDir string
	Document  *document.Document
	Ledger    *Ledger
}

// NewRun returns a Run with an empty ledger.
func NewRun(id, inputPath, outputDir string) *Run {
	return &Run{ID: id, InputPath: inputPath, OutputDir: outputDir, Ledger: NewLedger()}
}

// RequireDocument returns the ingested document or a validation error naming the stage.
func (r *Run) RequireDocument(stageName string) (*document.Document, error) {
	if r == nil || r.Document == nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "prepare",
			"No ingested document; run the ingest step first", nil)
	}
	return r.Document, nil
}

// RequireArtifact returns the path recorded for kind or a validation error naming the stage.
func (r *Run) RequireArtifact(stageName string, kind Artifact) (string, error) {
	if r != nil && r.Ledger != nil {
		if path, ok := r.Ledger.Path(kind); ok {
			return path, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, stageName, "prepare",
		"Missing "+string(kind)+" artifact; run the producing stage first", nil)
}
