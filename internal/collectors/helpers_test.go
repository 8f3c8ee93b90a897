// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import "testing"

// withCheckpointPath temporarily points *target at path, runs fn, and
// restores the original value afterward.
func withCheckpointPath(t *testing.T, target *string, path string, fn func()) {
	t.Helper()
	orig := *target
	*target = path
	defer func() { *target = orig }()
	fn()
}
