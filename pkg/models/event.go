package models

import (
	"time"

	"github.com/google/uuid"
)

// Event source tags. Each upstream feed writes rows under exactly one of these.
const (
	SourceServiceRequests = "311"
	SourceRoadClosures    = "road_ahead_closures"
	SourceCityProjects    = "city_project"
	SourceCouncilVotes    = "city_council"
)

// Event types stored in the event_type column.
const (
	EventTypeRoadClosure    = "ROAD_CLOSURE"
	EventTypeServiceRequest = "SERVICE_REQUEST"
	EventTypeCityProject    = "CITY_PROJECT"
	EventTypePermit         = "PERMIT"
	EventTypeVote           = "VOTE"
)

// Event is the canonical representation of any source record: the single
// unit the pipeline normalizes into and the schema of the events table.
//
// SourceKey identifies the record within its source and drives the upsert
// path; feeds with no stable natural key leave it nil and are appended.
// StartsAt and EndsAt are independently nullable - several feeds report
// only a completion date with no start. PublishedAt is the canonical
// sort/filter field and is always set.
type Event struct {
	ID              uuid.UUID  `json:"id"`
	Source          string     `json:"source"`
	SourceKey       *string    `json:"source_key,omitempty"`
	EventType       string     `json:"event_type"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	Location        *Point     `json:"location,omitempty"`
	NeighbourhoodID *uuid.UUID `json:"neighbourhood_id,omitempty"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	PublishedAt     time.Time  `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// NeighbourhoodName is the free-text area name some feeds carry.
	// It is not a persisted column: the upsert engine resolves it to
	// NeighbourhoodID just before the insert/update decision.
	NeighbourhoodName string `json:"-"`
}

// UpsertResult reports how a persisted batch split between the insert and
// update paths.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}
