// Package preflight provides readiness checks for the credentials, services,
// binaries and directories LearnPod depends on.
//
// The "learnpod config check" command runs RunAll and renders the results;
// the API ping is opt-in because it spends a request. Individual checks
// (CheckLLM, CheckDirectoryAccess, CheckMail) are exported for reuse.
package preflight
