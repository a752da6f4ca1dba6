// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RecordStore: Paper record persistence (SQLite)
//   - DocumentFetcher: Bounded retrieval of remote documents
//   - PageExtractor: Page-by-page text extraction from PDF bytes
//   - SourceScanner: Discovery of text documents on disk
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: Without it, records are persisted without embeddings.
//   - MetadataExtractor: Without it, records are persisted without metadata.
//   - PageRenderer: Without it, no first-page preview is stored.
//   - PipelineObserver: Without it, outcomes are only logged.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
