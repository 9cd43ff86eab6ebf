// Package services defines shared utilities consumed by the pipeline stages
// and the generation service clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and chunk positions for
//     logging.
//   - Structured error markers plus the Wrap helper, so callers can classify
//     failures with errors.Is and Details.
//
// Subpackages hold the retry policy and the text and speech clients.
package services
