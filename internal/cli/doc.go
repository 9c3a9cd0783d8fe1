// Package cli implements the redpen command tree.
package cli
