// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package auditsearch

import "os"

// DefaultLogPath is where auditd persists the text log this package parses.
const DefaultLogPath = "/var/log/audit/audit.log"

// OpenDefaultSource opens the host's audit log for reading. Callers pass
// the result to Init; Init does not take ownership of the handle's
// lifetime beyond the scan itself, so the caller should close it once the
// events slice has been built (Init reads the source to completion).
func OpenDefaultSource() (*os.File, error) {
	return os.Open(DefaultLogPath)
}
