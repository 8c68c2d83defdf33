package ledger

import (
	"context"
	"encoding/json"
	"fmt"
)

// accountLinesParams is the request body of one account_lines page. The
// marker is opaque and must round-trip byte-for-byte, so it stays a
// json.RawMessage end to end.
type accountLinesParams struct {
	Account     string          `json:"account"`
	LedgerIndex string          `json:"ledger_index"`
	Limit       int             `json:"limit,omitempty"`
	Marker      json.RawMessage `json:"marker,omitempty"`
}

// TrustLine is one line of an account_lines response. Balance is a signed
// decimal string; for an issuer account, lines held by counterparties show
// up negative.
type TrustLine struct {
	Account  string `json:"account"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
	Limit    string `json:"limit"`
	NoRipple bool   `json:"no_ripple,omitempty"`
}

// AccountLinesResult is the "result" object of an account_lines response.
type AccountLinesResult struct {
	Account      string          `json:"account"`
	Lines        []TrustLine     `json:"lines"`
	Marker       json.RawMessage `json:"marker,omitempty"`
	Status       string          `json:"status"`
	ErrorCode    string          `json:"error,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

type accountLinesResponse struct {
	Result AccountLinesResult `json:"result"`
}

// AccountLines fetches one page of trustlines held against the account. Pass
// a nil marker for the first page; a nil marker in the result means the last
// page was reached.
func (c *Client) AccountLines(ctx context.Context, account string, limit int, marker json.RawMessage) (*AccountLinesResult, error) {
	if account == "" {
		return nil, fmt.Errorf("account is required")
	}

	body, err := c.call(ctx, "account_lines", accountLinesParams{
		Account:     account,
		LedgerIndex: "validated",
		Limit:       limit,
		Marker:      marker,
	})
	if err != nil {
		return nil, err
	}

	var resp accountLinesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode account_lines response: %w", err)
	}

	if resp.Result.Status != "success" {
		if resp.Result.ErrorMessage != "" {
			return nil, fmt.Errorf("account_lines failed: %s (%s)", resp.Result.ErrorMessage, resp.Result.ErrorCode)
		}
		return nil, fmt.Errorf("account_lines failed with status %q", resp.Result.Status)
	}

	return &resp.Result, nil
}
