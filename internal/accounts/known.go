package accounts

// Static labels for well-known wallets. Pure lookup data; accounts missing
// from the table simply get no label.

import "trustline-monitor/internal/scan"

var known = scan.KnownAccounts{
	"rLNaPoKeeBjZe2qs6x52yVPZpZ8td4dc6w": {Label: "Binance", Type: scan.WalletTypeCEX},
	"rEb8TK3gBgk5auZkwc6sHnwrGVJH8DuaLh": {Label: "Binance Cold", Type: scan.WalletTypeCEX},
	"rLHzPsX6oXkzU2qL12kHCH8G8cnZv1rBJh": {Label: "Kraken", Type: scan.WalletTypeCEX},
	"rUobSiUpHCX9rSTDeFGNQieGaU6CpbXbXD": {Label: "Bitstamp", Type: scan.WalletTypeCEX},
	"rLW9gnQo7BQhU6igk5keqYnH3TVrCxGRzm": {Label: "Uphold", Type: scan.WalletTypeCEX},
	"rGDreBvnHrX1get7na3J4oowN19ny4GzFn": {Label: "Bitrue", Type: scan.WalletTypeCEX},
	"rJb5KsHsDHF1YS5B5DU6QCkH5NsPaKQTcy": {Label: "Treasury", Type: scan.WalletTypeTeam},
	"rMQ98K56yXJbDGv49ZSmW51sLn94Xe1mu1": {Label: "Founder Wallet", Type: scan.WalletTypeTeam},
	"r9cZA1mLK5R5Am25ArfXFmqgNwjZgnfk59": {Label: "Dev Fund", Type: scan.WalletTypeTeam},
}

// Table returns the static known-accounts mapping.
func Table() scan.KnownAccounts {
	return known
}
