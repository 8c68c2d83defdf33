package scan

import "context"

// PageFetcher performs a single paginated ledger query. A nil cursor asks for
// the first page; an empty NextCursor in the returned page signals end of
// data. Implementations must not retry: a failed fetch is fatal to the scan,
// and any retry policy belongs to the network boundary behind this interface.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor Cursor) (Page, error)
}

// SupplySource yields the denominator for percentage-of-supply figures. Read
// once per aggregation pass.
type SupplySource interface {
	SupplyBasis() float64
}
