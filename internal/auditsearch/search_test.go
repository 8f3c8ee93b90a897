// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package auditsearch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `type=SYSCALL msg=audit(1690000000.100:10): syscall=59 success=yes exit=0 pid=123 ppid=1 uid=0
type=EXECVE msg=audit(1690000000.100:10): argc=2 a0="/bin/ls" a1="-l"
type=SYSCALL msg=audit(1690000000.200:11): syscall=42 success=yes exit=0 pid=456 ppid=1 uid=0
type=EXECVE msg=audit(1690000000.200:11): argc=1 a0="/bin/sh"
`

func TestGroupRecordsGroupsByEventID(t *testing.T) {
	events, err := groupRecords(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Len(t, events[0].records, 2)
	assert.Len(t, events[1].records, 2)
}

func TestInitFiltersByKeyAndCheckpoint(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")

	s, err := Init(CriteriaType, []string{"SYSCALL"}, cp, strings.NewReader(sampleLog))
	require.NoError(t, err)
	defer s.Deinit()

	require.Equal(t, HasMoreData, s.GetNext())
	pid, res := s.ReadInt("pid")
	assert.Equal(t, ResultOK, res)
	assert.Equal(t, 123, pid)

	require.Equal(t, HasMoreData, s.GetNext())
	pid, res = s.ReadInt("pid")
	assert.Equal(t, ResultOK, res)
	assert.Equal(t, 456, pid)

	assert.Equal(t, NoMoreData, s.GetNext())
}

func TestCheckpointAdvanceExcludesPriorEvents(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")
	require.NoError(t, os.WriteFile(cp, []byte("1690000000.150"), 0o600))

	s, err := Init(CriteriaType, []string{"SYSCALL"}, cp, strings.NewReader(sampleLog))
	require.NoError(t, err)
	defer s.Deinit()

	require.Equal(t, HasMoreData, s.GetNext())
	pid, _ := s.ReadInt("pid")
	assert.Equal(t, 456, pid)
	assert.Equal(t, NoMoreData, s.GetNext())
}

func TestMissingCheckpointFileMeansScanEverything(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "does-not-exist")

	s, err := Init(CriteriaType, []string{"SYSCALL"}, cp, strings.NewReader(sampleLog))
	require.NoError(t, err)
	defer s.Deinit()
	assert.Equal(t, HasMoreData, s.GetNext())
	assert.Equal(t, HasMoreData, s.GetNext())
	assert.Equal(t, NoMoreData, s.GetNext())
}

func TestShortCheckpointFileTreatedAsMissing(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")
	require.NoError(t, os.WriteFile(cp, []byte("x"), 0o600))

	_, ok := readCheckpoint(cp)
	assert.False(t, ok)
}

func TestSetCheckpointWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")

	s, err := Init(CriteriaType, []string{"SYSCALL"}, cp, strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.NoError(t, s.SetCheckpoint())
	require.NoError(t, s.Deinit())

	_, ok := readCheckpoint(cp)
	assert.True(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1) // no leftover .tmp file
}

func TestReadIndexedFieldsReconstructsArgv(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")

	s, err := Init(CriteriaType, []string{"EXECVE"}, cp, strings.NewReader(sampleLog))
	require.NoError(t, err)
	defer s.Deinit()

	require.Equal(t, HasMoreData, s.GetNext())
	argv := s.ReadIndexedFields("a")
	assert.Equal(t, []string{"/bin/ls", "-l"}, argv)
}

func TestInterpretStringDecodesHexProctitle(t *testing.T) {
	log := `type=PROCTITLE msg=audit(1690000000.100:10): proctitle=2F62696E2F6C73002D6C
`
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")
	s, err := Init(CriteriaType, []string{"PROCTITLE"}, cp, strings.NewReader(log))
	require.NoError(t, err)
	defer s.Deinit()
	require.Equal(t, HasMoreData, s.GetNext())
	val, res := s.InterpretString("proctitle")
	assert.Equal(t, ResultOK, res)
	assert.Equal(t, "/bin/ls -l", val)
}

func TestReadStringMissingFieldReturnsFieldDoesNotExist(t *testing.T) {
	dir := t.TempDir()
	cp := filepath.Join(dir, "checkpoint")
	s, err := Init(CriteriaType, []string{"SYSCALL"}, cp, strings.NewReader(sampleLog))
	require.NoError(t, err)
	defer s.Deinit()
	require.Equal(t, HasMoreData, s.GetNext())
	_, res := s.ReadString("nonexistent")
	assert.Equal(t, ResultFieldDoesNotExist, res)
}
