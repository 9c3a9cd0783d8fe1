// Package output renders proofreading results in text and JSON formats.
package output
