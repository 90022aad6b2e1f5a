package reconciliation

import (
	"sort"
	"strings"
	"time"

	"planfact/pkg/models"
)

// KeyKind tells which lookup produced a match.
type KeyKind string

const (
	KeyExact  KeyKind = "exact"
	KeyDigits KeyKind = "digits"
)

// Entry is what a normalized key resolves to.
type Entry struct {
	Client        string
	ContractID    string
	InvoiceNumber string
	Date          time.Time
}

// Collision records one key that several invoices normalized to. The later
// invoice replaces the earlier one.
type Collision struct {
	Key         string
	Kind        KeyKind
	Kept        Entry
	Replaced    Entry
	Conflicting bool // Kept and Replaced point at different (client, contract) pairs
}

// Index resolves normalized invoice numbers to their owning client and
// contract. It is built once per pass and is read-only afterwards.
type Index struct {
	exact      map[string]Entry
	digits     map[string]Entry
	collisions []Collision
}

// BuildIndex indexes invoices by exact and digits key. Invoices are applied
// in ascending date order so that, for a shared key, the latest-dated invoice
// wins. Same-date ties are ordered by number, client and contract, which makes
// the result independent of input order. Invoices whose key is empty are left
// out of that lookup.
func BuildIndex(invoices []models.Invoice) *Index {
	sorted := make([]models.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.InvoiceNumber != b.InvoiceNumber {
			return a.InvoiceNumber < b.InvoiceNumber
		}
		if a.Client != b.Client {
			return a.Client < b.Client
		}
		return a.ContractID < b.ContractID
	})

	idx := &Index{
		exact:  make(map[string]Entry, len(sorted)),
		digits: make(map[string]Entry, len(sorted)),
	}
	for _, inv := range sorted {
		key := NormalizeKey(inv.InvoiceNumber)
		entry := Entry{
			Client:        strings.TrimSpace(inv.Client),
			ContractID:    strings.TrimSpace(inv.ContractID),
			InvoiceNumber: inv.InvoiceNumber,
			Date:          inv.Date,
		}
		idx.put(idx.exact, KeyExact, key.Exact, entry)
		idx.put(idx.digits, KeyDigits, key.Digits, entry)
	}
	return idx
}

func (idx *Index) put(m map[string]Entry, kind KeyKind, key string, entry Entry) {
	if key == "" {
		return
	}
	if prev, ok := m[key]; ok {
		idx.collisions = append(idx.collisions, Collision{
			Key:         key,
			Kind:        kind,
			Kept:        entry,
			Replaced:    prev,
			Conflicting: !sameContract(prev, entry),
		})
	}
	m[key] = entry
}

// LookupExact resolves an exact key.
func (idx *Index) LookupExact(key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}
	e, ok := idx.exact[key]
	return e, ok
}

// LookupDigits resolves a digits key.
func (idx *Index) LookupDigits(key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}
	e, ok := idx.digits[key]
	return e, ok
}

// Len returns the number of distinct exact keys.
func (idx *Index) Len() int {
	return len(idx.exact)
}

// Collisions returns every overwrite that happened during construction.
func (idx *Index) Collisions() []Collision {
	return idx.collisions
}

// CollisionCount returns the number of overwrites, exact and digits together.
func (idx *Index) CollisionCount() int {
	return len(idx.collisions)
}

// ConflictCount returns the number of overwrites that changed the resolved
// (client, contract).
func (idx *Index) ConflictCount() int {
	n := 0
	for _, c := range idx.collisions {
		if c.Conflicting {
			n++
		}
	}
	return n
}

func sameContract(a, b Entry) bool {
	return strings.EqualFold(a.Client, b.Client) && strings.EqualFold(a.ContractID, b.ContractID)
}
