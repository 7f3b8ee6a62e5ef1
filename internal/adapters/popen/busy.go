package popen

import (
	"os"

	"github.com/prometheus/procfs"
	"go.trai.ch/noderun/internal/core/ports"
)

// Holder is a process that has a file open.
type Holder struct {
	PID  int
	Comm string
}

// holders returns the processes other than this one that have path open.
func holders(path string) ([]Holder, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, err
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, err
	}

	self := os.Getpid()
	var found []Holder
	for _, p := range procs {
		if p.PID == self {
			continue
		}
		targets, err := p.FileDescriptorTargets()
		if err != nil {
			continue
		}
		for _, target := range targets {
			if target != path {
				continue
			}
			comm, _ := p.Comm()
			found = append(found, Holder{PID: p.PID, Comm: comm})
			break
		}
	}
	return found, nil
}

// LogTextFileBusy logs the processes keeping executable busy.
func LogTextFileBusy(logger ports.Logger, executable string) {
	found, err := holders(executable)
	if err != nil {
		logger.Debug("failed to look up text file busy holders", "path", executable, "error", err)
		return
	}
	for _, h := range found {
		logger.Warn("Text file busy details", "path", executable, "pid", h.PID, "comm", h.Comm)
	}
}
