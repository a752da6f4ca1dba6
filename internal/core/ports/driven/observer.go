package driven

import "github.com/phonetonote/paperweight/internal/core/domain"

// PipelineObserver receives ingestion outcomes for instrumentation.
// This is an optional port - when nil, outcomes are only logged.
type PipelineObserver interface {
	// LinkDiscovered is called once per classified link.
	LinkDiscovered(category domain.Category)

	// LinkSkipped is called when a link already has a record.
	LinkSkipped()

	// RecordPersisted is called after a successful insert.
	RecordPersisted(status domain.PaperStatus)

	// LinkFailed is called when a link's pipeline is abandoned without a record.
	LinkFailed()

	// FileFailed is called when a source file is reported and skipped.
	FileFailed()
}
