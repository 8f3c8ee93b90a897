// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package privilege

import "golang.org/x/sys/unix"

func seteuidRoot() (priorEUID int, err error) {
	prior := unix.Geteuid()
	if prior == 0 {
		return 0, nil
	}
	if err := unix.Seteuid(0); err != nil {
		return 0, err
	}
	return prior, nil
}

func restoreEUID(priorEUID int) error {
	return unix.Seteuid(priorEUID)
}
