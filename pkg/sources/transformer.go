// Package sources normalizes raw open-data records into canonical events.
// One Transformer per upstream feed; TransformBatch drives a transformer
// over a fetched batch, isolating per-record failures.
package sources

import (
	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/models"
)

// Transformer converts one raw record of a fixed, source-specific shape
// into a canonical event. A nil event with a non-nil error is a
// rejection: the record is dropped and logged, never fatal to the batch.
type Transformer interface {
	// Source returns the feed tag written to the event's source column.
	Source() string

	// TransformRecord normalizes a single raw record. Malformed optional
	// fields degrade to null on the returned event; a missing or
	// unparsable required field rejects the record with an error.
	TransformRecord(raw map[string]any) (*models.Event, error)
}

// Deduper is implemented by transformers whose feed repeats one logical
// event across many records (council votes report one row per member).
// Records sharing a dedup key collapse to the first occurrence.
type Deduper interface {
	DedupKey(raw map[string]any) (string, bool)
}

// TransformBatch applies t to every record in raws, in order. Records
// that are not objects, fail transformation, or repeat a dedup key are
// logged and skipped; one bad record never aborts the rest of the batch.
func TransformBatch(logger *zap.Logger, t Transformer, raws []any) []*models.Event {
	deduper, _ := t.(Deduper)
	seen := make(map[string]struct{})

	events := make([]*models.Event, 0, len(raws))
	for i, r := range raws {
		raw, ok := r.(map[string]any)
		if !ok {
			logger.Warn("Skipping record: not a structured object",
				zap.String("source", t.Source()),
				zap.Int("index", i))
			continue
		}

		if deduper != nil {
			if key, ok := deduper.DedupKey(raw); ok {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
		}

		event, err := t.TransformRecord(raw)
		if err != nil {
			logger.Warn("Transform failed for record",
				zap.String("source", t.Source()),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		events = append(events, event)
	}
	return events
}
