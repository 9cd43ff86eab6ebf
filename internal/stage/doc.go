// Package stage defines the contract between the orchestrator and the
// pipeline stages: the Handler interface, the per-run state, and the
// artifact ledger stages write into.
package stage
