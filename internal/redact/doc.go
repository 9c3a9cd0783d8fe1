// Package redact scrubs API keys and other secrets from text before it
// reaches the raw debug log.
package redact
