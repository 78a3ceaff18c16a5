package sources

import (
	"fmt"
	"strings"

	"github.com/civilnews/civic-engine/pkg/jsonutil"
	"github.com/civilnews/civic-engine/pkg/models"
)

// serviceRequestTransformer normalizes 3-1-1 service request records.
//
// Temporal mapping: the open timestamp is both the published time and the
// start of impact; the close date (absent for active cases) is the end.
// The natural key is the open timestamp joined with the street address,
// which keeps re-ingested requests on the idempotent upsert path.
type serviceRequestTransformer struct{}

// NewServiceRequestTransformer returns the transformer for the 311 feed.
func NewServiceRequestTransformer() Transformer {
	return serviceRequestTransformer{}
}

func (serviceRequestTransformer) Source() string {
	return models.SourceServiceRequests
}

func (serviceRequestTransformer) TransformRecord(raw map[string]any) (*models.Event, error) {
	openRaw := jsonutil.StringField(raw, "service_request_open_timestamp")
	published, err := ParseTimestamp(openRaw)
	if err != nil {
		return nil, fmt.Errorf("missing or invalid service_request_open_timestamp: %w", err)
	}
	starts := published

	endsAt := optionalTime(jsonutil.StringField(raw, "service_request_close_date"), ParseFlexibleDate)
	updatedAt := optionalTime(jsonutil.StringField(raw, "last_modified_timestamp"), ParseTimestamp)

	title := StripLegacyPrefix(jsonutil.StringField(raw, "service_request_type"))
	if title == "" {
		title = "Service Request"
	}

	address := strings.TrimSpace(jsonutil.StringField(raw, "address"))
	localArea := strings.TrimSpace(jsonutil.StringField(raw, "local_area"))

	event := &models.Event{
		Source:            models.SourceServiceRequests,
		SourceKey:         serviceRequestKey(openRaw, address),
		EventType:         models.EventTypeServiceRequest,
		Title:             title,
		Summary:           serviceRequestSummary(raw, title, address, localArea),
		Location:          pointFromLatLon(raw),
		StartsAt:          &starts,
		EndsAt:            endsAt,
		PublishedAt:       published,
		NeighbourhoodName: localArea,
	}
	if updatedAt != nil {
		event.UpdatedAt = *updatedAt
	}
	return event, nil
}

// serviceRequestKey derives the natural key: open timestamp + address,
// falling back to the address alone, then a constant when neither exists.
func serviceRequestKey(openTimestamp, address string) *string {
	openTimestamp = strings.TrimSpace(openTimestamp)
	var key string
	switch {
	case openTimestamp != "" && address != "":
		key = openTimestamp + "|" + address
	case address != "":
		key = address
	case openTimestamp != "":
		key = openTimestamp
	default:
		key = "unknown"
	}
	return &key
}

// serviceRequestSummary synthesizes the display sentence:
// "{title} happened at {address}, {area}. Status: {status}. Closure reason: {reason}."
func serviceRequestSummary(raw map[string]any, title, address, localArea string) string {
	var locationParts []string
	if address != "" {
		locationParts = append(locationParts, address)
	}
	if localArea != "" {
		locationParts = append(locationParts, localArea)
	}

	summary := title + " happened"
	if len(locationParts) > 0 {
		summary += " at " + strings.Join(locationParts, ", ")
	}
	summary += "."

	if status := normalizeStatus(jsonutil.StringField(raw, "status")); status != "UNKNOWN" {
		summary += " Status: " + status + "."
	}
	if reason := strings.TrimSpace(jsonutil.StringField(raw, "closure_reason")); reason != "" {
		summary += " Closure reason: " + reason + "."
	}
	return summary
}

var _ Transformer = serviceRequestTransformer{}
