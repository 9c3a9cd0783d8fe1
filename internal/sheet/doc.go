// Package sheet reads the spreadsheet batch queue and writes review
// results back to it via the Google Sheets API.
package sheet
