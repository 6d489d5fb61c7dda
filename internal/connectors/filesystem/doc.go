// Package filesystem finds corpus files in a local folder and watches it
// for changes.
package filesystem
