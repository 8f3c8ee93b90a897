// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package firewall enumerates nftables chains and rules for the
// FirewallConfiguration collector. It is read-only: unlike a rule-applying
// manager, this package never writes a ruleset, only walks the one already
// loaded into the kernel.
package firewall

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"

	"grimm.is/sentrycore/internal/errors"
)

// Action is the effective outcome of matching a rule.
type Action string

const (
	ActionAllow Action = "Allow"
	ActionDeny  Action = "Deny"
	ActionOther Action = "Other"
)

// Direction is the chain's traffic direction, derived from its hook.
type Direction string

const (
	DirectionIn  Direction = "In"
	DirectionOut Direction = "Out"
)

// Rule is one firewall rule, or the synthetic default-policy entry
// appended after a chain's real rules.
type Rule struct {
	Enabled     bool
	Priority    int
	ChainName   string
	Direction   Direction
	SrcAddress  string
	SrcPort     string
	DestAddress string
	DestPort    string
	Protocol    string
	Action      Action
}

// Conn is the subset of *nftables.Conn this package needs; satisfied by
// the real connection, and fakeable in tests.
type Conn interface {
	ListChains() ([]*nftables.Chain, error)
	GetRules(t *nftables.Table, c *nftables.Chain) ([]*nftables.Rule, error)
}

// Iterator yields every rule across every inspected chain for one scan.
type Iterator struct {
	rules []Rule
	idx   int
}

// Init connects to nftables and enumerates every chain hooked to input or
// output, producing one Rule per real rule plus a trailing synthetic
// default-policy Rule for each chain.
func Init() (*Iterator, error) {
	conn, err := nftables.New()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "firewall: connect to nftables")
	}
	return InitWithConn(conn)
}

// InitWithConn builds the iterator against an injected connection, for
// testing without a real netlink socket.
func InitWithConn(conn Conn) (*Iterator, error) {
	chains, err := conn.ListChains()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "firewall: list chains")
	}

	it := &Iterator{idx: -1}
	for _, chain := range chains {
		dir, ok := chainDirection(chain)
		if !ok {
			continue
		}
		rules, err := conn.GetRules(chain.Table, chain)
		if err != nil {
			continue
		}
		priority := 0
		for _, r := range rules {
			priority++
			it.rules = append(it.rules, ruleFromNft(chain.Name, dir, priority, r))
		}
		priority++
		it.rules = append(it.rules, Rule{
			Enabled:   true,
			Priority:  priority,
			ChainName: chain.Name,
			Direction: dir,
			Action:    defaultPolicyAction(chain),
		})
	}
	return it, nil
}

func chainDirection(c *nftables.Chain) (Direction, bool) {
	if c.Hooknum == nil {
		return "", false
	}
	switch c.Hooknum.String() {
	case "input":
		return DirectionIn, true
	case "output":
		return DirectionOut, true
	default:
		return "", false
	}
}

func defaultPolicyAction(c *nftables.Chain) Action {
	if c.Policy == nil {
		return ActionOther
	}
	switch *c.Policy {
	case nftables.ChainPolicyAccept:
		return ActionAllow
	case nftables.ChainPolicyDrop:
		return ActionDeny
	default:
		return ActionOther
	}
}

// ruleFromNft does a best-effort extraction of address/port/protocol match
// expressions and the terminal verdict out of a compiled nftables rule.
// Rules the match engine can't interpret still yield a Rule with an
// ActionOther action rather than being dropped silently.
func ruleFromNft(chainName string, dir Direction, priority int, r *nftables.Rule) Rule {
	out := Rule{
		Enabled:   true,
		Priority:  priority,
		ChainName: chainName,
		Direction: dir,
		Action:    ActionOther,
	}

	var lastCmp *expr.Cmp
	for _, e := range r.Exprs {
		switch v := e.(type) {
		case *expr.Meta:
			// tracked only to keep the loop shape; payload key carries the
			// actual protocol/address offsets we read from Cmp below.
			_ = v
		case *expr.Cmp:
			lastCmp = v
			applyCmp(&out, v)
		case *expr.Verdict:
			switch v.Kind {
			case expr.VerdictAccept:
				out.Action = ActionAllow
			case expr.VerdictDrop:
				out.Action = ActionDeny
			default:
				out.Action = ActionOther
			}
		}
	}
	_ = lastCmp
	return out
}

// applyCmp inspects one comparison expression's raw bytes and, where the
// length matches a known shape (4-byte v4 address, 2-byte port), fills in
// the corresponding Rule field. nftables rule compilation does not tag
// which logical field a Cmp belongs to by name, so this is necessarily
// heuristic: it assumes the common "match dest, then optionally src,
// then accept/drop" expression ordering and has no way to distinguish a
// rule that genuinely matches source before destination.
func applyCmp(out *Rule, c *expr.Cmp) {
	switch len(c.Data) {
	case 4:
		addr := net.IP(c.Data).String()
		if out.DestAddress == "" {
			out.DestAddress = addr
		} else {
			out.SrcAddress = addr
		}
	case 2:
		port := binary.BigEndian.Uint16(c.Data)
		if out.DestPort == "" {
			out.DestPort = fmt.Sprintf("%d", port)
		} else {
			out.SrcPort = fmt.Sprintf("%d", port)
		}
	case 1:
		switch c.Data[0] {
		case 6:
			out.Protocol = "tcp"
		case 17:
			out.Protocol = "udp"
		}
	}
}

// HasNext reports whether Next will succeed.
func (it *Iterator) HasNext() bool { return it.idx+1 < len(it.rules) }

// Next advances to and returns the next rule.
func (it *Iterator) Next() Rule {
	it.idx++
	return it.rules[it.idx]
}

// Deinit is a no-op kept for symmetry with the other data-source iterators.
func (it *Iterator) Deinit() {}
