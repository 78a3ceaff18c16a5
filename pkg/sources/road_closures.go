package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/civilnews/civic-engine/pkg/jsonutil"
	"github.com/civilnews/civic-engine/pkg/models"
)

// roadClosureTransformer normalizes Road Ahead current-closure records.
//
// The feed supplies no stable per-record identity and no publication
// time: published_at is the ingestion wall clock and events take the
// insert-only append path, so re-running the pipeline duplicates rows.
type roadClosureTransformer struct {
	now func() time.Time
}

// NewRoadClosureTransformer returns the transformer for the road
// closures feed.
func NewRoadClosureTransformer() Transformer {
	return &roadClosureTransformer{now: time.Now}
}

func (*roadClosureTransformer) Source() string {
	return models.SourceRoadClosures
}

func (t *roadClosureTransformer) TransformRecord(raw map[string]any) (*models.Event, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil record")
	}

	title := strings.TrimSpace(jsonutil.StringField(raw, "project"))
	if title == "" {
		title = "Road Closure"
	}

	return &models.Event{
		Source:      models.SourceRoadClosures,
		EventType:   models.EventTypeRoadClosure,
		Title:       title,
		Summary:     roadClosureSummary(raw),
		Location:    pointFromGeoPoint(jsonutil.MapField(raw, "geo_point_2d")),
		EndsAt:      optionalTime(jsonutil.StringField(raw, "comp_date"), ParseFlexibleDate),
		PublishedAt: t.now().UTC(),
	}, nil
}

func roadClosureSummary(raw map[string]any) string {
	var parts []string
	if location := strings.TrimSpace(jsonutil.StringField(raw, "location")); location != "" {
		parts = append(parts, "Road closure: "+location)
	}
	if compDate := strings.TrimSpace(jsonutil.StringField(raw, "comp_date")); compDate != "" {
		parts = append(parts, "Est. completion: "+compDate)
	}
	if url := strings.TrimSpace(jsonutil.StringField(raw, "url_link")); url != "" {
		parts = append(parts, "See more: "+url)
	}
	if len(parts) == 0 {
		return "Road closure update"
	}
	return strings.Join(parts, "; ")
}

var _ Transformer = (*roadClosureTransformer)(nil)
