// Package snapshot takes holder snapshots of a policy: it pages through the
// listing API, formats the report and hands it to a reply transport.
package snapshot

import (
	"context"
	"fmt"

	"github.com/keshon/snapshot-bot/internal/holders"
)

// PageFetcher fetches one page of holders. An empty cursor asks for the first
// page; an empty NextCursor in the result marks the last one.
type PageFetcher interface {
	FetchPage(ctx context.Context, policyID, cursor string) (*holders.Page, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, policyID, cursor string) (*holders.Page, error)

func (f PageFetcherFunc) FetchPage(ctx context.Context, policyID, cursor string) (*holders.Page, error) {
	return f(ctx, policyID, cursor)
}

// Collect follows the cursor chain until it ends and returns every holder in
// page-then-record order. Duplicates across pages are kept. Any failed page
// discards everything fetched so far.
func Collect(ctx context.Context, fetcher PageFetcher, policyID string) ([]holders.Holder, error) {
	var (
		all    []holders.Holder
		cursor string
	)
	for pageNum := 1; ; pageNum++ {
		page, err := fetcher.FetchPage(ctx, policyID, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pageNum, err)
		}
		all = append(all, page.Holders...)
		if page.Last() {
			return all, nil
		}
		cursor = page.NextCursor
	}
}
