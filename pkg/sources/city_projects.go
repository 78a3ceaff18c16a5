package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/civilnews/civic-engine/pkg/jsonutil"
	"github.com/civilnews/civic-engine/pkg/models"
)

// cityProjectTransformer normalizes street capital project records. The
// feed has the same shape and limitations as road closures: no natural
// key, no publication time, so appended rather than upserted.
type cityProjectTransformer struct {
	now func() time.Time
}

// NewCityProjectTransformer returns the transformer for the street
// capital projects feed.
func NewCityProjectTransformer() Transformer {
	return &cityProjectTransformer{now: time.Now}
}

func (*cityProjectTransformer) Source() string {
	return models.SourceCityProjects
}

func (t *cityProjectTransformer) TransformRecord(raw map[string]any) (*models.Event, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil record")
	}

	title := strings.TrimSpace(jsonutil.StringField(raw, "project_title"))
	if title == "" {
		title = "City Project"
	}

	return &models.Event{
		Source:      models.SourceCityProjects,
		EventType:   models.EventTypeCityProject,
		Title:       title,
		Summary:     cityProjectSummary(raw, title),
		Location:    pointFromGeoPoint(jsonutil.MapField(raw, "geo_point_2d")),
		EndsAt:      optionalTime(jsonutil.StringField(raw, "expected_completion_date"), ParseFlexibleDate),
		PublishedAt: t.now().UTC(),
	}, nil
}

func cityProjectSummary(raw map[string]any, title string) string {
	var parts []string
	if location := strings.TrimSpace(jsonutil.StringField(raw, "location")); location != "" {
		parts = append(parts, "City project: "+title+" "+location)
	}
	if completion := strings.TrimSpace(jsonutil.StringField(raw, "expected_completion_date")); completion != "" {
		parts = append(parts, "Est. completion: "+completion)
	}
	if url := strings.TrimSpace(jsonutil.StringField(raw, "url_link")); url != "" {
		parts = append(parts, "See more: "+url)
	}
	if len(parts) == 0 {
		return "City project update"
	}
	return strings.Join(parts, "; ")
}

var _ Transformer = (*cityProjectTransformer)(nil)
