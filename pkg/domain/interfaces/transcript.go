package interfaces

import (
	"context"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
)

// TranscriptProvider fetches meeting transcripts from an external
// transcription service. Read paths degrade to empty results on provider
// failure so a broken integration never blocks the rest of the pipeline.
type TranscriptProvider interface {
	// GetSpeeches returns transcripts within [start, end].
	GetSpeeches(ctx context.Context, start, end time.Time) ([]*model.Transcript, error)

	// GetAllSpeeches is the unfiltered debug variant.
	GetAllSpeeches(ctx context.Context) ([]*model.Transcript, error)

	ConnectionTester
}
