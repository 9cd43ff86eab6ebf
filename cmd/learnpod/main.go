package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"learnpod/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			if markedError(err) {
				fmt.Fprintln(os.Stderr, "Hint:", services.Details(err).Hint)
			}
		}
		os.Exit(1)
	}
}

// markedError reports whether err carries one of the services markers.
func markedError(err error) bool {
	for _, marker := range []error{
		services.ErrNotFound,
		services.ErrInvalidFormat,
		services.ErrEncoding,
		services.ErrValidation,
		services.ErrConfiguration,
		services.ErrExternalTool,
		services.ErrTransient,
		services.ErrTimeout,
	} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}
