// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package users enumerates local user and group accounts. No third-party
// library in the example corpus wraps /etc/passwd and /etc/group lookups.
// Accounts are listed by a direct line parse of /etc/passwd (os/user has no
// call that lists every account); each account's groups are resolved
// through the standard library's os/user.
package users

import (
	"fmt"
	"os/user"
	"strings"
)

// Account is one local user with its resolved group memberships.
type Account struct {
	UserName   string
	UserId     string
	GroupNames string // ';'-joined
	GroupIds   string // ';'-joined
	GroupError error  // non-nil if group resolution failed for this user
}

// Iterator yields every local account for one scan.
type Iterator struct {
	accounts []Account
	idx      int
}

// passwdPath is overridable in tests.
var passwdPath = "/etc/passwd"

// Init reads /etc/passwd and resolves each user's group list. A user whose
// group lookup fails still yields an Account (GroupNames/GroupIds empty,
// GroupError set) — per spec, group list failure for one user never aborts
// the collector.
func Init() (*Iterator, error) {
	lines, err := readPasswdLines(passwdPath)
	if err != nil {
		return nil, fmt.Errorf("users: read passwd: %w", err)
	}

	it := &Iterator{idx: -1}
	for _, name := range lines {
		acc := Account{UserName: name.username, UserId: name.uid}
		groupNames, groupIds, gerr := resolveGroups(name.username)
		if gerr != nil {
			acc.GroupError = gerr
		} else {
			acc.GroupNames = strings.Join(groupNames, ";")
			acc.GroupIds = strings.Join(groupIds, ";")
		}
		it.accounts = append(it.accounts, acc)
	}
	return it, nil
}

func resolveGroups(username string) ([]string, []string, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return nil, nil, err
	}
	gids, err := u.GroupIds()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(gids))
	for _, gid := range gids {
		if g, err := user.LookupGroupId(gid); err == nil {
			names = append(names, g.Name)
		} else {
			names = append(names, gid)
		}
	}
	return names, gids, nil
}

// HasNext reports whether Next will succeed.
func (it *Iterator) HasNext() bool { return it.idx+1 < len(it.accounts) }

// Next advances to and returns the next account.
func (it *Iterator) Next() Account {
	it.idx++
	return it.accounts[it.idx]
}

// Deinit is a no-op kept for symmetry with the other data-source iterators.
func (it *Iterator) Deinit() {}
