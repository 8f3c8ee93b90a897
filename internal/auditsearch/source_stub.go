// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package auditsearch

import (
	"fmt"
	"os"
	"runtime"
)

// OpenDefaultSource always fails on non-Linux platforms; the audit trail
// this package reads is a Linux kernel facility.
func OpenDefaultSource() (*os.File, error) {
	return nil, fmt.Errorf("auditsearch: no audit source on %s", runtime.GOOS)
}
