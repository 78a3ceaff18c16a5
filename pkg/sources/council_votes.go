package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/civilnews/civic-engine/pkg/jsonutil"
	"github.com/civilnews/civic-engine/pkg/models"
)

// Raw fields whose combination identifies one meeting vote. The feed
// reports one record per council member; TransformBatch collapses
// records sharing this key to a single event.
var councilVoteKeyFields = []string{
	"meeting_type",
	"vote_date",
	"vote_number",
	"agenda_description",
	"vote_start_date_time",
}

// councilVoteTransformer normalizes council voting records. The vote
// start time becomes the end bound, the vote date the last-modified
// time, and published_at is the ingestion wall clock. No geometry and
// no natural key: votes take the insert-only append path.
type councilVoteTransformer struct {
	now func() time.Time
}

// NewCouncilVoteTransformer returns the transformer for the council
// voting records feed.
func NewCouncilVoteTransformer() Transformer {
	return &councilVoteTransformer{now: time.Now}
}

func (*councilVoteTransformer) Source() string {
	return models.SourceCouncilVotes
}

// DedupKey joins the meeting-identifying fields; empty fields join as
// empty strings so partially-filled records still compare consistently.
func (*councilVoteTransformer) DedupKey(raw map[string]any) (string, bool) {
	parts := make([]string, 0, len(councilVoteKeyFields))
	for _, field := range councilVoteKeyFields {
		parts = append(parts, jsonutil.StringField(raw, field))
	}
	return strings.Join(parts, "|"), true
}

func (t *councilVoteTransformer) TransformRecord(raw map[string]any) (*models.Event, error) {
	endsAt, err := ParseTimestamp(jsonutil.StringField(raw, "vote_start_date_time"))
	if err != nil {
		return nil, fmt.Errorf("missing or invalid vote_start_date_time: %w", err)
	}

	updatedAt, err := ParseDate(jsonutil.StringField(raw, "vote_date"))
	if err != nil {
		return nil, fmt.Errorf("missing or invalid vote_date: %w", err)
	}

	meetingType := strings.TrimSpace(jsonutil.StringField(raw, "meeting_type"))
	if meetingType == "" {
		meetingType = "Council Vote"
	}
	agenda := strings.TrimSpace(jsonutil.StringField(raw, "agenda_description"))
	if agenda == "" {
		agenda = "No agenda"
	}

	title := meetingType + ": " + agenda
	if detailID := strings.TrimSpace(jsonutil.StringField(raw, "vote_detail_id")); detailID != "" {
		title = fmt.Sprintf("%s: %s (%s)", meetingType, agenda, detailID)
	}

	return &models.Event{
		Source:      models.SourceCouncilVotes,
		EventType:   models.EventTypeVote,
		Title:       title,
		Summary:     councilVoteSummary(raw, agenda),
		EndsAt:      &endsAt,
		PublishedAt: t.now().UTC(),
		UpdatedAt:   updatedAt,
	}, nil
}

func councilVoteSummary(raw map[string]any, agenda string) string {
	var parts []string
	if voteDate := strings.TrimSpace(jsonutil.StringField(raw, "vote_date")); voteDate != "" {
		parts = append(parts, "Council Meeting: "+voteDate)
	}
	if agenda != "" && agenda != "No agenda" {
		parts = append(parts, "Topic: "+agenda)
	}
	if vote := strings.TrimSpace(jsonutil.StringField(raw, "vote")); vote != "" {
		parts = append(parts, "Vote: "+vote)
	}
	if voteNumber := strings.TrimSpace(jsonutil.StringField(raw, "vote_number")); voteNumber != "" {
		parts = append(parts, "Vote #: "+voteNumber)
	}
	if len(parts) == 0 {
		return "Council vote update"
	}
	return strings.Join(parts, "; ")
}

var (
	_ Transformer = (*councilVoteTransformer)(nil)
	_ Deduper     = (*councilVoteTransformer)(nil)
)
