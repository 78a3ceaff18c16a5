package opendata

import "context"

// SourceFetcher binds a client to one dataset, satisfying the pipeline's
// fetcher contract.
type SourceFetcher struct {
	client  *Client
	dataset string
	limit   int
	orderBy string
}

func NewSourceFetcher(client *Client, dataset string, limit int, orderBy string) *SourceFetcher {
	if limit <= 0 {
		limit = 100
	}
	return &SourceFetcher{client: client, dataset: dataset, limit: limit, orderBy: orderBy}
}

func (f *SourceFetcher) Fetch(ctx context.Context) ([]any, error) {
	return f.client.FetchRecords(ctx, f.dataset, f.limit, 0, f.orderBy)
}
