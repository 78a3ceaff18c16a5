package sources

import (
	"fmt"

	"github.com/civilnews/civic-engine/pkg/apperrors"
	"github.com/civilnews/civic-engine/pkg/models"
)

// ForSource returns the transformer registered for a feed tag.
func ForSource(tag string) (Transformer, error) {
	switch tag {
	case models.SourceServiceRequests:
		return NewServiceRequestTransformer(), nil
	case models.SourceRoadClosures:
		return NewRoadClosureTransformer(), nil
	case models.SourceCityProjects:
		return NewCityProjectTransformer(), nil
	case models.SourceCouncilVotes:
		return NewCouncilVoteTransformer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownSource, tag)
	}
}
