// Package pipeline runs one document through every stage and reports what
// was produced.
//
// An Orchestrator allocates a fresh timestamped output directory, tees the
// run's logs into pipeline.log inside it, and executes the stages in fixed
// order: ingest, script, explainer and questions abort the run on failure;
// audio and email failures are logged and the run continues. The terminal
// step always builds a Manifest from the artifact ledger so callers can show
// which files exist even after a hard failure.
//
// StagesFromConfig wires the production stage handlers; tests pass fakes
// through StageSet instead.
package pipeline
