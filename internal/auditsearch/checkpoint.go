// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package auditsearch

import (
	"os"
	"path/filepath"
	"strconv"

	"grimm.is/sentrycore/internal/errors"
)

// readCheckpoint returns the timestamp stored at path, or (0, false) if the
// file is absent or too short to hold a value — both are "no prior
// checkpoint", per spec: everything available is scanned.
func readCheckpoint(path string) (float64, bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return 0, false
	}
	ts, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// writeCheckpoint persists ts to path atomically: write to a sibling temp
// file, then rename over the destination, so a crash mid-write never leaves
// a truncated checkpoint behind.
func writeCheckpoint(path string, ts float64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "auditsearch: create checkpoint temp file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strconv.FormatFloat(ts, 'f', 6, 64)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.KindUnavailable, "auditsearch: write checkpoint")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.KindUnavailable, "auditsearch: close checkpoint temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "auditsearch: rename checkpoint into place at %s", path)
	}
	return nil
}
