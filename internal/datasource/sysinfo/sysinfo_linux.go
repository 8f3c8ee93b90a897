// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

// Package sysinfo reads a one-shot snapshot of host OS identity and memory
// usage for the SystemInformation collector.
package sysinfo

import (
	"fmt"
	"os"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
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

// Read collects the current snapshot.
func Read() (Info, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return Info{}, fmt.Errorf("sysinfo: uname: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = cstr(uts.Nodename[:])
	}

	info := Info{
		OSName:         cstr(uts.Sysname[:]),
		OSVersion:      cstr(uts.Release[:]) + " " + cstr(uts.Version[:]),
		OSArchitecture: cstr(uts.Machine[:]),
		HostName:       hostname,
	}

	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return info, fmt.Errorf("sysinfo: open procfs: %w", err)
	}
	mem, err := fs.Meminfo()
	if err != nil {
		return info, fmt.Errorf("sysinfo: read meminfo: %w", err)
	}
	if mem.MemTotal != nil {
		info.TotalPhysicalMemoryInKB = *mem.MemTotal
	}
	if mem.MemFree != nil {
		info.FreePhysicalMemoryInKB = *mem.MemFree
	}
	return info, nil
}

func cstr(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	bs := make([]byte, n)
	for i := 0; i < n; i++ {
		bs[i] = byte(b[i])
	}
	return string(bs)
}
