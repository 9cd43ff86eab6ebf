package pipeline

import (
	"context"
	"os"
	"time"
	"unicode/utf8"

	"learnpod/internal/media/ffprobe"
	"learnpod/internal/notifications"
	"learnpod/internal/quiz"
	"learnpod/internal/stage"
)

// attachmentOrder lists artifacts in the order they are attached to mail.
var attachmentOrder = []stage.Artifact{
	stage.ArtifactAudio,
	stage.ArtifactScript,
	stage.ArtifactExplanation,
	stage.ArtifactQuestions,
	stage.ArtifactFlashcards,
}

// BuildPackage collects the existing artifacts of run and their statistics.
func BuildPackage(ctx context.Context, run *stage.Run, ffprobeBinary string, createdAt time.Time) notifications.Package {
	pkg := notifications.Package{CreatedAt: createdAt}
	if run.Document != nil {
		pkg.Title = run.Document.Title
	}
	for _, kind := range attachmentOrder {
		path, ok := run.Ledger.Path(kind)
		if !ok {
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		pkg.Attachments = append(pkg.Attachments, notifications.Attachment{Kind: kind, Path: path})

		switch kind {
		case stage.ArtifactAudio:
			if d, err := ffprobe.Duration(ctx, ffprobeBinary, path); err == nil {
				pkg.Stats.AudioDuration = d
			}
		case stage.ArtifactScript:
			pkg.Stats.ScriptChars = runeCount(path)
		case stage.ArtifactExplanation:
			pkg.Stats.ExplanationChars = runeCount(path)
		case stage.ArtifactQuestions:
			if data, err := os.ReadFile(path); err == nil {
				pkg.Stats.Questions = quiz.CountQuestions(string(data))
			}
		case stage.ArtifactFlashcards:
			if deck, err := quiz.LoadDeck(path); err == nil {
				pkg.Stats.Flashcards = len(deck.Flashcards)
			}
		}
	}
	return pkg
}

func runeCount(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return utf8.RuneCount(data)
}
