// Package normalisers holds the document format readers used by the fetcher.
// Each subpackage turns the bytes of one remote format into plain text.
package normalisers
