// Package connectors provides the sources the ingestion pipeline reads
// text documents from. Only the local filesystem is supported.
package connectors
