package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Artifact identifies one kind of file a run produces.
type Artifact string

// Artifact kinds in the order the run summary lists them.
const (
	ArtifactScript      Artifact = "script"
	ArtifactExplanation Artifact = "explanation"
	ArtifactQuestions   Artifact = "questions"
	ArtifactFlashcards  Artifact = "flashcards"
	ArtifactAudio       Artifact = "audio"
)

// Artifacts lists every kind tracked by a Ledger.
var Artifacts = []Artifact{
	ArtifactScript,
	ArtifactExplanation,
	ArtifactQuestions,
	ArtifactFlashcards,
	ArtifactAudio,
}

// ErrAlreadyRecorded is returned when a ledger entry is set twice.
var ErrAlreadyRecorded = errors.New("artifact already recorded")

// Entry is one ledger slot.
type Entry struct {
	Kind Artifact
	Path string
}

// Ledger maps artifact kinds to produced file paths. Entries start unset and
// are written at most once.
type Ledger struct {
	paths map[Artifact]string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{paths: make(map[Artifact]string, len(Artifacts))}
}

// Record sets the path for kind. Empty paths are rejected and an entry
// cannot be replaced once set.
func (l *Ledger) Record(kind Artifact, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("record %s: empty path", kind)
	}
	if existing, ok := l.paths[kind]; ok {
		return fmt.Errorf("record %s: %w (%s)", kind, ErrAlreadyRecorded, existing)
	}
	l.paths[kind] = path
	return nil
}

// Path returns the recorded path for kind.
func (l *Ledger) Path(kind Artifact) (string, bool) {
	if l == nil {
		return "", false
	}
	path, ok := l.paths[kind]
	return path, ok
}

// Entries returns every slot in summary order, including unset ones.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(Artifacts))
	for _, kind := range Artifacts {
		path, _ := l.Path(kind)
		out = append(out, Entry{Kind: kind, Path: path})
	}
	return out
}

// Produced returns the recorded paths in summary order.
func (l *Ledger) Produced() []string {
	var out []string
	for _, entry := range l.Entries() {
		if entry.Path != "" {
			out = append(out, entry.Path)
		}
	}
	return out
}
