package stage

import (
	"errors"
	"testing"
)

func TestLedgerRecordsOnce(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Record(ArtifactScript, "/out/script.md"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	err := ledger.Record(ArtifactScript, "/out/other.md")
	if !errors.Is(err, ErrAlreadyRecorded) {
		t.Fatalf("expected ErrAlreadyRecorded, got %v", err)
	}
	if path, _ := ledger.Path(ArtifactScript); path != "/out/script.md" {
		t.Fatalf("entry overwritten: %s", path)
	}
}

func TestLedgerRejectsEmptyPath(t *testing.T) {
	if err := NewLedger().Record(ArtifactAudio, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLedgerEntriesInSummaryOrder(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Record(ArtifactAudio, "/out/podcast.mp3")
	_ = ledger.Record(ArtifactScript, "/out/script.md")

	entries := ledger.Entries()
	if len(entries) != len(Artifacts) {
		t.Fatalf("expected %d entries, got %d", len(Artifacts), len(entries))
	}
	if entries[0].Kind != ArtifactScript || entries[0].Path != "/out/script.md" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Path != "" {
		t.Fatalf("explanation should be unset, got %q", entries[1].Path)
	}
	produced := ledger.Produced()
	if len(produced) != 2 || produced[1] != "/out/podcast.mp3" {
		t.Fatalf("unexpected produced list %v", produced)
	}
}

func TestRunRequireHelpers(t *testing.T) {
	run := NewRun("id", "in.md", "/out")
	if _, err := run.RequireDocument(NameScript); err == nil {
		t.Fatal("expected error without document")
	}
	if _, err := run.RequireArtifact(NameAudio, ArtifactScript); err == nil {
		t.Fatal("expected error without script")
	}
	_ = run.Ledger.Record(ArtifactScript, "/out/script.md")
	if path, err := run.RequireArtifact(NameAudio, ArtifactScript); err != nil || path != "/out/script.md" {
		t.Fatalf("RequireArtifact = %q, %v", path, err)
	}
}
