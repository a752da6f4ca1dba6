// Package services implements the driving ports on top of the driven ports.
//
// IngestService is the ingestion orchestrator: it walks a tree of text
// documents, classifies the links they reference and drives each link
// through fetch, embedding, metadata extraction and a single insert.
// PaperService is the read side used by the CLI and the MCP server.
package services
