// Package balance aggregates reconciled documents per contract and turns
// the sums into plan-vs-actual balances.
//
// All sums are exact decimals. Figures are truncated to two places only
// when a balance row is produced, never before summation.
package balance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ContractKey is the grouping key shared by invoices, credit notes and
// plans. Both parts are trimmed, whitespace-collapsed, NFC-normalized and
// case-folded, so "ACME  UAB" and "Acme UAB" land in the same group.
type ContractKey struct {
	Client     string
	ContractID string
}

// NewContractKey normalizes client and contract ID into a grouping key.
func NewContractKey(client, contractID string) ContractKey {
	return ContractKey{
		Client:     normalizeName(client),
		ContractID: normalizeName(contractID),
	}
}

func normalizeName(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	return cases.Fold().String(s)
}

// Less orders keys by client, then contract.
func (k ContractKey) Less(other ContractKey) bool {
	if k.Client != other.Client {
		return k.Client < other.Client
	}
	return k.ContractID < other.ContractID
}
