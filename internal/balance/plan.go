package balance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a user-entered target value for one contract.
type Plan struct {
	Client     string
	ContractID string
	Planned    decimal.Decimal
	UpdatedAt  time.Time
}

// PlanTable holds plans keyed by ContractKey. Writes are last-write-wins per
// key. A reconciliation run only reads it.
type PlanTable struct {
	plans map[ContractKey]Plan
}

// NewPlanTable returns an empty table.
func NewPlanTable() *PlanTable {
	return &PlanTable{plans: make(map[ContractKey]Plan)}
}

// Set stores planned for (client, contractID), replacing any previous value.
func (t *PlanTable) Set(client, contractID string, planned decimal.Decimal) {
	t.Put(Plan{
		Client:     strings.TrimSpace(client),
		ContractID: strings.TrimSpace(contractID),
		Planned:    planned,
		UpdatedAt:  time.Now().UTC(),
	})
}

// Put stores a fully populated plan.
func (t *PlanTable) Put(p Plan) {
	t.plans[NewContractKey(p.Client, p.ContractID)] = p
}

// Delete removes the plan for (client, contractID) and reports whether it existed.
func (t *PlanTable) Delete(client, contractID string) bool {
	key := NewContractKey(client, contractID)
	_, ok := t.plans[key]
	delete(t.plans, key)
	return ok
}

// Get returns the plan for (client, contractID).
func (t *PlanTable) Get(client, contractID string) (Plan, bool) {
	p, ok := t.plans[NewContractKey(client, contractID)]
	return p, ok
}

// Planned returns the planned amount for key, zero when no plan exists yet.
func (t *PlanTable) Planned(key ContractKey) decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	if p, ok := t.plans[key]; ok {
		return p.Planned
	}
	return decimal.Zero
}

// Len returns the number of plans.
func (t *PlanTable) Len() int {
	return len(t.plans)
}

// All returns plans ordered by client and contract.
func (t *PlanTable) All() []Plan {
	keys := make([]ContractKey, 0, len(t.plans))
	for k := range t.plans {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]Plan, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.plans[k])
	}
	return out
}
