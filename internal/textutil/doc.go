// Package textutil provides the small text transforms shared by the
// generation stages: code-fence stripping, blank-line collapsing, character
// counting, token estimation, and filename sanitization.
package textutil
