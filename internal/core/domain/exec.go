package domain

// InternalErrorExitCode is the exit code of a node that failed the build root integrity check.
const InternalErrorExitCode = 3

// ExecRequest is one command handed to an executor.
type ExecRequest struct {
	Args []string
	// Env is the complete environment in KEY=VALUE form.
	Env []string
	Cwd string
	// Stdout is the file receiving standard output; empty discards it.
	Stdout string
	// Nice is added to the process niceness; zero leaves it unchanged.
	Nice int
	// Network is the network requirement forwarded to executors that isolate networking.
	Network string
}

// ExecResult is the outcome of one command.
// Stderr holds the captured lines that were not protocol messages.
type ExecResult struct {
	Stderr   string
	ExitCode int
}
