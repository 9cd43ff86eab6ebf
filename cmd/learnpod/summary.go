package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"learnpod/internal/media/ffprobe"
	"learnpod/internal/pipeline"
	"learnpod/internal/stage"
)

var artifactLabels = map[stage.Artifact]string{
	stage.ArtifactScript:      "Script",
	stage.ArtifactExplanation: "Explanation",
	stage.ArtifactQuestions:   "Q&A",
	stage.ArtifactFlashcards:  "Flashcards",
	stage.ArtifactAudio:       "Audio",
}

func renderSummary(report *pipeline.Report) string {
	var b strings.Builder
	title := strings.TrimSpace(report.Title)
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "Title:      %s\n", title)
	fmt.Fprintf(&b, "Output dir: %s\n", report.OutputDir)
	fmt.Fprintf(&b, "Run ID:     %s\n", report.RunID)
	b.WriteString(renderManifest(report.Manifest))
	b.WriteString("\n")
	if report.Complete() {
		b.WriteString("Package: complete\n")
	} else {
		b.WriteString("Package: incomplete\n")
	}

	if report.FailedStage != "" {
		fmt.Fprintf(&b, "Aborted at stage: %s\n", report.FailedStage)
	}
	stages := make([]string, 0, len(report.SoftFailures))
	for name := range report.SoftFailures {
		stages = append(stages, name)
	}
	sort.Strings(stages)
	for _, name := range stages {
		fmt.Fprintf(&b, "Warning: %s failed: %v\n", name, report.SoftFailures[name])
	}
	switch {
	case report.EmailSent:
		b.WriteString("Email: sent\n")
	case report.EmailSkipped != "":
		fmt.Fprintf(&b, "Email: skipped (%s)\n", report.EmailSkipped)
	}
	return b.String()
}

func renderManifest(entries []pipeline.ManifestEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		status := "❌"
		file, size, duration := "-", "-", "-"
		if entry.Exists {
			status = "✅"
			file = filepath.Base(entry.Path)
			size = pipeline.FormatSize(entry.Size)
			if entry.Duration > 0 {
				duration = ffprobe.FormatClock(entry.Duration)
			}
		}
		label := artifactLabels[entry.Kind]
		if label == "" {
			label = string(entry.Kind)
		}
		rows = append(rows, []string{status, label, file, size, duration})
	}
	return renderTable(
		[]string{"", "Artifact", "File", "Size", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
