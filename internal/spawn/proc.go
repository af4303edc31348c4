package spawn

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ProcTree reads parent pids from a procfs mount.
type ProcTree struct {
	Root string
}

// NewProcTree returns a ProcTree reading /proc.
func NewProcTree() ProcTree {
	return ProcTree{Root: "/proc"}
}

// ParentPID returns the parent of pid, or 0 when it cannot be read.
func (p ProcTree) ParentPID(pid int) int {
	if pid <= 0 {
		return 0
	}
	data, err := os.ReadFile(filepath.Join(p.Root, strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0
	}
	return parseStatPPID(string(data))
}

// parseStatPPID extracts field 4 of /proc/<pid>/stat. The command name in
// field 2 is parenthesized and may itself contain spaces and parentheses.
func parseStatPPID(stat string) int {
	end := strings.LastIndexByte(stat, ')')
	if end < 0 {
		return 0
	}
	fields := strings.Fields(stat[end+1:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}
