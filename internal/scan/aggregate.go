package scan

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TierThreshold is one rung of the classification ladder: the lowest balance
// (inclusive) that still earns the label.
type TierThreshold struct {
	MinBalance float64
	Label      string
}

// TierTable is the classification ladder, highest threshold first. Bounds are
// inclusive and the entries must stay ordered and non-overlapping; the
// boundaries themselves are configuration, not logic.
var TierTable = []TierThreshold{
	{1_000_000_000, "Blue Whale"},
	{500_000_000, "Humpback"},
	{100_000_000, "Whale"},
	{10_000_000, "Orca"},
	{5_000_000, "Shark"},
	{2_500_000, "Dolphin"},
	{1_000_000, "Tuna"},
	{500_000, "Swordfish"},
	{250_000, "Barracuda"},
	{100_000, "Octopus"},
	{50_000, "Fish"},
	{25_000, "Crab"},
	{10_000, "Shrimp"},
}

// DefaultTier is assigned below the lowest threshold.
const DefaultTier = "Plankton"

// ClassifyTier walks the ladder top-down and returns the first label whose
// threshold the balance meets.
func ClassifyTier(balance float64) string {
	for _, t := range TierTable {
		if balance >= t.MinBalance {
			return t.Label
		}
	}
	return DefaultTier
}

// Aggregate turns a full set of raw trustline records into the ranked holder
// list in one pass. It is pure: same inputs, same output, and it never fails
// on bad numeric input (an unparseable balance counts as zero and is
// filtered out with the rest of the non-holdings).
func Aggregate(records []TrustlineRecord, supplyBasis float64, excludeIssuer bool, issuer string, known KnownAccounts) []Holder {
	holdings := make([]RawHolding, 0, len(records))
	for _, rec := range records {
		bal := holdingBalance(rec.Balance)
		if bal <= 0 {
			continue
		}
		holdings = append(holdings, RawHolding{Account: rec.Account, Balance: bal})
	}

	// Ties keep their original order; the ledger defines no secondary key.
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].Balance > holdings[j].Balance
	})

	if excludeIssuer {
		for i, h := range holdings {
			if h.Account == issuer {
				holdings = append(holdings[:i], holdings[i+1:]...)
				break
			}
		}
	}

	holders := make([]Holder, 0, len(holdings))
	for i, h := range holdings {
		percentage := 0.0
		if supplyBasis > 0 {
			percentage = h.Balance / supplyBasis * 100
		}

		holder := Holder{
			Rank:       i + 1,
			Account:    h.Account,
			Balance:    h.Balance,
			Percentage: percentage,
			Tier:       ClassifyTier(h.Balance),
		}
		if info, ok := known[h.Account]; ok {
			holder.WalletLabel = info.Label
			holder.WalletType = info.Type
		}
		holders = append(holders, holder)
	}

	return holders
}

// holdingBalance maps a signed trustline balance string to the held amount.
// Holders are recorded negative relative to the issuer, so only negative
// balances represent real holdings; everything else (including strings that
// fail to parse) maps to zero.
func holdingBalance(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	if !d.IsNegative() {
		return 0
	}
	return d.Abs().InexactFloat64()
}
