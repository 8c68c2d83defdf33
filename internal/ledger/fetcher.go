package ledger

import (
	"context"

	"trustline-monitor/internal/scan"
)

// TrustlineFetcher adapts the client to the scan engine's page contract for
// one issuer/currency pair. Lines in other currencies against the same
// issuer are filtered out here, before the records reach aggregation.
type TrustlineFetcher struct {
	client   *Client
	issuer   string
	currency string
	limit    int
}

func NewTrustlineFetcher(client *Client, issuer, currency string, limit int) *TrustlineFetcher {
	return &TrustlineFetcher{client: client, issuer: issuer, currency: currency, limit: limit}
}

func (f *TrustlineFetcher) FetchPage(ctx context.Context, cursor scan.Cursor) (scan.Page, error) {
	result, err := f.client.AccountLines(ctx, f.issuer, f.limit, cursor)
	if err != nil {
		return scan.Page{}, err
	}

	records := make([]scan.TrustlineRecord, 0, len(result.Lines))
	for _, line := range result.Lines {
		if f.currency != "" && line.Currency != f.currency {
			continue
		}
		records = append(records, scan.TrustlineRecord{
			Account: line.Account,
			Balance: line.Balance,
		})
	}

	return scan.Page{Records: records, NextCursor: result.Marker}, nil
}
