// Package stageexec runs a single pipeline stage with uniform start,
// completion and failure logging.
package stageexec
