package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"learnpod/internal/config"
	"learnpod/internal/document"
	"learnpod/internal/textutil"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <document.md>",
		Short: "Parse a document and show its structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			doc, err := document.Ingest(path, logger)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDocument(doc))
			return nil
		},
	}
}

func renderDocument(doc *document.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:      %s\n", doc.Title)
	fmt.Fprintf(&b, "Sections:   %d\n", len(doc.Sections))
	fmt.Fprintf(&b, "Characters: %d\n", doc.CharacterCount())

	if len(doc.Metadata) > 0 {
		b.WriteString("Metadata:\n")
		keys := make([]string, 0, len(doc.Metadata))
		for key := range doc.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", key, doc.Metadata[key])
		}
	}

	rows := make([][]string, 0, len(doc.Sections))
	for i, section := range doc.Sections {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strings.Repeat("#", section.Level),
			section.Title,
			strconv.Itoa(textutil.CountNonSpace(section.Content)),
		})
	}
	b.WriteString(renderTable(
		[]string{"#", "Level", "Title", "Chars"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
	b.WriteString("\n")
	return b.String()
}
