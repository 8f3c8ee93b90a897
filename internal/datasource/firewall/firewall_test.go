// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package firewall

import (
	"testing"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	chains []*nftables.Chain
	rules  map[string][]*nftables.Rule
}

func (f *fakeConn) ListChains() ([]*nftables.Chain, error) { return f.chains, nil }
func (f *fakeConn) GetRules(t *nftables.Table, c *nftables.Chain) ([]*nftables.Rule, error) {
	return f.rules[c.Name], nil
}

func TestInitWithConnAppendsSyntheticDefaultPolicy(t *testing.T) {
	policy := nftables.ChainPolicyAccept
	table := &nftables.Table{Name: "filter"}
	chain := &nftables.Chain{
		Name:    "INPUT",
		Table:   table,
		Hooknum: nftables.ChainHookInput,
		Policy:  &policy,
	}
	conn := &fakeConn{
		chains: []*nftables.Chain{chain},
		rules: map[string][]*nftables.Rule{
			"INPUT": {
				{Table: table, Chain: chain, Exprs: []expr.Any{
					&expr.Verdict{Kind: expr.VerdictAccept},
				}},
			},
		},
	}

	it, err := InitWithConn(conn)
	require.NoError(t, err)

	require.True(t, it.HasNext())
	r1 := it.Next()
	assert.Equal(t, 1, r1.Priority)
	assert.Equal(t, ActionAllow, r1.Action)

	require.True(t, it.HasNext())
	r2 := it.Next()
	assert.Equal(t, 2, r2.Priority)
	assert.Equal(t, ActionAllow, r2.Action) // synthetic default policy entry

	assert.False(t, it.HasNext())
}

func TestChainWithoutHookIsSkipped(t *testing.T) {
	table := &nftables.Table{Name: "filter"}
	chain := &nftables.Chain{Name: "CUSTOM", Table: table}
	conn := &fakeConn{chains: []*nftables.Chain{chain}}

	it, err := InitWithConn(conn)
	require.NoError(t, err)
	assert.False(t, it.HasNext())
}
