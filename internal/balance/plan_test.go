package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTableLastWriteWins(t *testing.T) {
	plans := NewPlanTable()
	plans.Set("Acme UAB", "K-1", dec("100"))
	plans.Set("  acme   uab ", "k-1", dec("250"))

	assert.Equal(t, 1, plans.Len())
	p, ok := plans.Get("ACME UAB", "K-1")
	require.True(t, ok)
	assert.True(t, dec("250").Equal(p.Planned))
	assert.True(t, dec("250").Equal(plans.Planned(NewContractKey("Acme UAB", "K-1"))))
}

func TestPlanTableDelete(t *testing.T) {
	plans := NewPlanTable()
	plans.Set("Acme", "K-1", dec("1"))

	assert.True(t, plans.Delete("acme", "k-1"))
	assert.False(t, plans.Delete("acme", "k-1"))
	assert.True(t, plans.Planned(NewContractKey("Acme", "K-1")).IsZero())
}

func TestPlanTableAllOrdered(t *testing.T) {
	plans := NewPlanTable()
	plans.Set("Beta", "K-1", dec("1"))
	plans.Set("Acme", "K-2", dec("2"))
	plans.Set("Acme", "K-1", dec("3"))

	all := plans.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Acme", all[0].Client)
	assert.Equal(t, "K-1", all[0].ContractID)
	assert.Equal(t, "K-2", all[1].ContractID)
	assert.Equal(t, "Beta", all[2].Client)
}

func TestContractKeyFolding(t *testing.T) {
	assert.Equal(t, NewContractKey("Straße  GmbH", "K-1"), NewContractKey("STRASSE gmbh", "k-1"))
	assert.Equal(t, NewContractKey("Ąžuolas", ""), NewContractKey("ĄŽUOLAS", ""))
	assert.NotEqual(t, NewContractKey("Acme", "K-1"), NewContractKey("Acme", "K-2"))
}
