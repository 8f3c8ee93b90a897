// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FilePermissionCheck fails when path's mode has any bit in forbiddenBits
// set (e.g. world-writable).
type FilePermissionCheck struct {
	CheckName     string
	Path          string
	ForbiddenBits os.FileMode
}

func (c FilePermissionCheck) Name() string { return c.CheckName }

func (c FilePermissionCheck) Run() (bool, string) {
	info, err := os.Stat(c.Path)
	if err != nil {
		return false, fmt.Sprintf("stat %s: %v", c.Path, err)
	}
	if info.Mode()&c.ForbiddenBits != 0 {
		return false, fmt.Sprintf("%s has forbidden permission bits set: %v", c.Path, info.Mode())
	}
	return true, fmt.Sprintf("%s permissions OK: %v", c.Path, info.Mode())
}

// SSHDConfigCheck fails when sshd_config sets directive to one of
// disallowedValues (case-insensitive).
type SSHDConfigCheck struct {
	CheckName        string
	Path             string
	Directive        string
	DisallowedValues []string
}

func (c SSHDConfigCheck) Name() string { return c.CheckName }

func (c SSHDConfigCheck) Run() (bool, string) {
	f, err := os.Open(c.Path)
	if err != nil {
		return false, fmt.Sprintf("open %s: %v", c.Path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.EqualFold(fields[0], c.Directive) {
			continue
		}
		value := fields[1]
		for _, bad := range c.DisallowedValues {
			if strings.EqualFold(value, bad) {
				return false, fmt.Sprintf("%s %s is set to disallowed value %q", c.Directive, c.Path, value)
			}
		}
		return true, fmt.Sprintf("%s %s is %q", c.Directive, c.Path, value)
	}
	return true, fmt.Sprintf("%s not set in %s (default applies)", c.Directive, c.Path)
}

// DefaultBaselineChecks returns the built-in rule set: passwd not
// world-writable, shadow not world-readable, and sshd not configured to
// permit root login.
func DefaultBaselineChecks() []BaselineCheck {
	return []BaselineCheck{
		FilePermissionCheck{CheckName: "PasswdNotWorldWritable", Path: "/etc/passwd", ForbiddenBits: 0o002},
		FilePermissionCheck{CheckName: "ShadowNotWorldReadable", Path: "/etc/shadow", ForbiddenBits: 0o004},
		SSHDConfigCheck{
			CheckName:        "SSHRootLoginDisabled",
			Path:             "/etc/ssh/sshd_config",
			Directive:        "PermitRootLogin",
			DisallowedValues: []string{"yes"},
		},
	}
}
