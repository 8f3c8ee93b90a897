// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package listeningports iterates the host's listening TCP/UDP sockets
// (v4 and v6), resolving each to the owning pid via an inode→pid map built
// once per scan by walking every process's open file descriptors.
package listeningports

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// Port is one listening (or, for UDP, bound) socket.
type Port struct {
	Protocol     string // "tcp", "tcp6", "udp", "udp6"
	LocalAddress string
	LocalPort    string
	RemoteAddress string
	RemotePort    string
	inode         uint64
}

// Iterator yields every listening socket for one scan.
type Iterator struct {
	ports   []Port
	inodes  map[uint64]int
	idx     int
}

const tcpListenState = 0x0A // TCP_LISTEN
const udpCloseState = 0x07  // conventional "unconnected" state procfs reports for UDP

// Init builds the inode→pid map and reads every socket table. A process
// whose fd directory can't be read (permission, race with exit) is
// skipped; it simply won't resolve to a pid.
func Init() (*Iterator, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("listeningports: open procfs: %w", err)
	}

	inodes, err := buildInodeToPidMap(fs)
	if err != nil {
		return nil, fmt.Errorf("listeningports: walk process fds: %w", err)
	}

	it := &Iterator{inodes: inodes, idx: -1}

	if tcp, err := fs.NetTCP(); err == nil {
		it.appendTCP(tcp, "tcp")
	}
	if tcp6, err := fs.NetTCP6(); err == nil {
		it.appendTCP(tcp6, "tcp6")
	}
	if udp, err := fs.NetUDP(); err == nil {
		it.appendUDP(udp, "udp")
	}
	if udp6, err := fs.NetUDP6(); err == nil {
		it.appendUDP(udp6, "udp6")
	}

	return it, nil
}

func buildInodeToPidMap(fs procfs.FS) (map[uint64]int, error) {
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, err
	}
	inodes := make(map[uint64]int)
	for _, p := range procs {
		fds, err := p.FileDescriptorTargets()
		if err != nil {
			continue
		}
		for _, target := range fds {
			var inode uint64
			if _, scanErr := fmt.Sscanf(target, "socket:[%d]", &inode); scanErr == nil {
				inodes[inode] = p.PID
			}
		}
	}
	return inodes, nil
}

func (it *Iterator) appendTCP(lines procfs.NetTCP, proto string) {
	for _, l := range lines {
		if l.St != tcpListenState {
			continue
		}
		// A LISTEN-state socket's raw RemAddr/RemPort are always the
		// kernel's unset 0.0.0.0:0; report the documented "no peer yet"
		// literal instead of echoing that back.
		it.ports = append(it.ports, Port{
			Protocol:      proto,
			LocalAddress:  l.LocalAddr.String(),
			LocalPort:     fmt.Sprintf("%d", l.LocalPort),
			RemoteAddress: "0.0.0.0",
			RemotePort:    "*",
			inode:         l.Inode,
		})
	}
}

func (it *Iterator) appendUDP(lines procfs.NetUDP, proto string) {
	for _, l := range lines {
		if l.St != udpCloseState {
			continue
		}
		it.ports = append(it.ports, Port{
			Protocol:      proto,
			LocalAddress:  l.LocalAddr.String(),
			LocalPort:     fmt.Sprintf("%d", l.LocalPort),
			RemoteAddress: "0.0.0.0",
			RemotePort:    "*",
			inode:         l.Inode,
		})
	}
}

// HasNext reports whether Next will succeed.
func (it *Iterator) HasNext() bool {
	return it.idx+1 < len(it.ports)
}

// Next advances to and returns the next port.
func (it *Iterator) Next() Port {
	it.idx++
	return it.ports[it.idx]
}

// Pid resolves the owning pid of the current port via the inode→pid map
// built at Init. ok is false if no process currently holds that socket
// inode open (it may have already closed, or the owning process could not
// be enumerated).
func (it *Iterator) Pid() (pid int, ok bool) {
	if it.idx < 0 || it.idx >= len(it.ports) {
		return 0, false
	}
	pid, ok = it.inodes[it.ports[it.idx].inode]
	return pid, ok
}

// Deinit releases iterator resources. The procfs reads are not held open
// across the scan, so this is a no-op kept for symmetry with the other
// data-source iterators.
func (it *Iterator) Deinit() {}
