// Package config loads, normalizes, and validates LearnPod configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and the GMAIL_* variables. The Config value is built once at
// process start and handed to every component that needs credentials, model
// names, chunk budgets or speaker mappings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
