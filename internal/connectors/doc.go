// Package connectors provides the document sources of the corpus.
// The filesystem connector scans and watches a local folder.
package connectors
