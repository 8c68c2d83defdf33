package scan

// Package scan implements the trustline scan engine: the paginated fetch
// loop, the scan lifecycle state machine, the aggregation pipeline that
// turns raw trustline records into a ranked holder list, and the live-update
// scheduler that keeps that list fresh.

import "encoding/json"

// Cursor is the opaque continuation token of a paginated ledger query. It is
// passed back to the node byte-for-byte; nil means "first page" on the way in
// and "no more pages" on the way out.
type Cursor = json.RawMessage

// TrustlineRecord is one raw balance record as returned by the ledger. The
// balance is a signed decimal string; holders show up negative from the
// issuer's side. Records only live for the duration of a scan pass.
type TrustlineRecord struct {
	Account string
	Balance string
}

// Page is the result of fetching one page of trustlines.
type Page struct {
	Records    []TrustlineRecord
	NextCursor Cursor
}

// RawHolding is a trustline reduced to a positive token amount. Only
// holdings with Balance > 0 survive into aggregation.
type RawHolding struct {
	Account string
	Balance float64
}

// WalletType classifies a known account.
type WalletType string

const (
	WalletTypeCEX  WalletType = "cex"
	WalletTypeTeam WalletType = "team"
)

// KnownAccount is a static label attached to well-known wallets.
type KnownAccount struct {
	Label string
	Type  WalletType
}

// KnownAccounts maps account identifiers to their static labels.
type KnownAccounts map[string]KnownAccount

// Holder is one entry of the ranked holder list. The list is rebuilt
// wholesale on every completed scan; individual holders are never mutated.
type Holder struct {
	Rank        int
	Account     string
	Balance     float64
	Percentage  float64
	Tier        string
	WalletLabel string
	WalletType  WalletType
}

// Status is the scan lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusScanning Status = "scanning"
	StatusComplete Status = "complete"
	StatusAborted  Status = "aborted"
	StatusErrored  Status = "errored"
)

// State is a snapshot of the controller's scan state.
type State struct {
	Status      Status
	RecordsSeen int
	Message     string
	ErrorDetail string
}
