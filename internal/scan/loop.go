package scan

import (
	"context"
	"fmt"
)

// ProgressFunc receives the running record count after each page. A nil
// ProgressFunc disables incremental reporting (background rescans).
type ProgressFunc func(recordsSoFar int)

// RunLoop drives the fetcher page by page until the ledger stops returning a
// continuation cursor. Pages are fetched strictly in sequence: each cursor is
// only valid against the page that produced it. Cancellation is cooperative
// and observed between fetches only, so an in-flight page always runs to
// completion before the loop gives up.
//
// On cancellation the returned error satisfies errors.Is(err, ctx.Err());
// any other error is a fetch failure.
func RunLoop(ctx context.Context, fetcher PageFetcher, onProgress ProgressFunc) ([]TrustlineRecord, error) {
	var (
		records []TrustlineRecord
		cursor  Cursor
		pageNum int
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageNum++
		page, err := fetcher.FetchPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", pageNum, err)
		}

		records = append(records, page.Records...)
		if onProgress != nil {
			onProgress(len(records))
		}

		if len(page.NextCursor) == 0 {
			return records, nil
		}
		cursor = page.NextCursor
	}
}
