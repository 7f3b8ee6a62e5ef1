package popen

import "os/exec"

// SetStart replaces the process starter.
func (e *Executor) SetStart(start func(*exec.Cmd) error) {
	e.start = start
}

// LookPath exposes lookPath for testing.
var LookPath = lookPath

// Holders exposes holders for testing.
var Holders = holders
