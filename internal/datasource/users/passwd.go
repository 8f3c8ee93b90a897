// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package users

import (
	"bufio"
	"os"
	"strings"
)

type passwdEntry struct {
	username string
	uid      string
}

// readPasswdLines parses the account name and uid out of each /etc/passwd
// line. os/user has no "list every account" call, so the enumeration step
// itself is a direct line parse; per-account detail still goes through
// os/user.
func readPasswdLines(path string) ([]passwdEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []passwdEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		out = append(out, passwdEntry{username: fields[0], uid: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
