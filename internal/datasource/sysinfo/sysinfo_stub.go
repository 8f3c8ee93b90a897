// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package sysinfo

import (
	"fmt"
	"runtime"
)

// Info is the snapshot SystemInformation events are built from.
type Info struct {
	OSName                  string
	OSVersion               string
	OSArchitecture          string
	HostName                string
	TotalPhysicalMemoryInKB uint64
	FreePhysicalMemoryInKB  uint64
}

// Read always fails on non-Linux platforms; the fields above come from
// Linux-specific uname(2) and /proc/meminfo sources.
func Read() (Info, error) {
	return Info{}, fmt.Errorf("sysinfo: unsupported on %s", runtime.GOOS)
}
