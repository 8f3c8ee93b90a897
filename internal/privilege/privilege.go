// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package privilege implements scoped elevation to root for the duration of
// an audit-subsystem operation, with guaranteed release on every exit path.
package privilege

import (
	"fmt"
	"sync"
)

// Token represents one scoped elevation region. Only one Token may be
// elevated process-wide at a time — the audit iterator's lifecycle takes
// and releases it in a single Init/Deinit pair (spec §5).
type Token struct {
	mu           sync.Mutex
	elevated     bool
	originalEUID int
}

var processLock sync.Mutex

// NewToken returns an unelevated token.
func NewToken() *Token {
	return &Token{originalEUID: -1}
}

// ChangeToRoot elevates the calling process to euid 0, recording the prior
// euid so Reset can restore it. Idempotent if already root.
func (t *Token) ChangeToRoot() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.elevated {
		return nil
	}

	processLock.Lock()
	prior, err := seteuidRoot()
	if err != nil {
		processLock.Unlock()
		return fmt.Errorf("privilege: change to root: %w", err)
	}

	t.originalEUID = prior
	t.elevated = true
	return nil
}

// Reset restores the euid captured by ChangeToRoot and releases the
// process-wide elevation lock. It is a no-op if the token was never
// elevated, or already had euid 0 when ChangeToRoot ran.
func (t *Token) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.elevated {
		return nil
	}
	defer func() {
		t.elevated = false
		processLock.Unlock()
	}()

	if t.originalEUID < 0 {
		return nil
	}
	return restoreEUID(t.originalEUID)
}
