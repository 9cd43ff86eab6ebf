// Package notifications delivers the finished learning package by email.
//
// The default implementation sends one message over implicit-TLS SMTP with
// github.com/wneessen/go-mail, attaching every artifact the run produced. When
// delivery credentials are incomplete NewService returns a no-op service whose
// Enabled method reports false, so callers can skip the step without treating
// it as an error.
//
// Pipeline code depends only on the Service interface.
package notifications
