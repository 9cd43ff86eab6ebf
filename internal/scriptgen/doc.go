// Package scriptgen produces the two-speaker dialogue script (script.md)
// from an ingested document.
//
// Long documents are split with the chunker, one script fragment is generated
// per chunk with a proportionally shorter target length, and the fragments are
// merged with repeated introductions removed. The result is normalized to
// canonical "Speaker N:" labels before it is written.
package scriptgen
