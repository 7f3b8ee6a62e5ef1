package runner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

// tmpDirName is the per node temporary directory inside the build root.
const tmpDirName = "r3tmp"

// execute runs the node action and returns the joined error text and the exit code.
// A returned error unwinds the build.
func (t *RunNodeTask) execute(ctx context.Context) (string, int, error) {
	t.b.Logger.Debug("run node", "uid", t.node.UID, "root", t.root.Path())

	switch a := t.action.(type) {
	case domain.FuncAction:
		return t.executeFunc(ctx, a.Fn)
	case domain.CommandAction:
		return t.executeCommands(ctx, a.Commands)
	default:
		return "", 0, zerr.With(domain.ErrNodeFunctionFailed, "uid", t.node.UID)
	}
}

func (t *RunNodeTask) executeFunc(ctx context.Context, fn domain.NodeFunc) (string, int, error) {
	err := fn(ctx, t.patterns)
	if err == nil {
		return "", 0, nil
	}

	var nodeErr *domain.NodeError
	if errors.As(err, &nodeErr) {
		return nodeErr.Message, nodeErr.ExitCode, nil
	}
	if ctx.Err() != nil {
		return "", 0, zerr.With(zerr.Wrap(err, domain.ErrCancelled.Error()), "uid", t.node.UID)
	}

	t.mu.Lock()
	t.rawStderr = err.Error()
	t.mu.Unlock()
	return "", 0, zerr.With(zerr.Wrap(err, domain.ErrNodeFunctionFailed.Error()), "uid", t.node.UID)
}

func (t *RunNodeTask) executeCommands(ctx context.Context, commands []domain.Command) (string, int, error) {
	b := t.b
	cfg := b.Config
	root := t.root.Path()

	var (
		errs     []string
		exitCode int
	)
	for _, raw := range commands {
		cmd := t.patterns.FillCommand(raw)

		if cfg.Verbose {
			errs = append(errs, quoteCommand(cmd.Env, cmd.Args))
		}

		cwd := cmd.Cwd
		if cwd == "" {
			cwd = root
		}

		tmpDir := filepath.Join(root, tmpDirName)
		if err := os.MkdirAll(tmpDir, 0o755); err != nil {
			return "", 0, zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "path", tmpDir)
		}

		req := domain.ExecRequest{
			Args:   cmd.Args,
			Env:    t.commandEnv(cmd.Env, tmpDir),
			Cwd:    cwd,
			Stdout: cmd.Stdout,
			Nice:   cfg.Nice,
		}
		if cfg.PrivateNetNS {
			req.Network = t.node.Requirements.Network
		}

		var detail string
		if cfg.DetailedArgs {
			detail = strings.Join(cmd.Args, " ")
		}
		t.timings.StartStage(domain.StageExecuteCommand, b.now(), "cmd", detail)
		res, err := b.Executor.Run(ctx, req, progressSink{t: t})
		t.timings.StartStage(domain.StagePostprocessingCommand, b.now())

		stderr, code := res.Stderr, res.ExitCode
		if err != nil {
			if errors.Is(err, domain.ErrCancelled) {
				return "", 0, err
			}
			if ctx.Err() != nil {
				return "", 0, zerr.With(zerr.Wrap(err, domain.ErrCancelled.Error()), "uid", t.node.UID)
			}
			stderr, code = fmt.Sprintf("Process run failed: %v", err), 1
		}

		if !cfg.KeepTemps && code == 0 {
			if err := b.FS.RemoveTree(tmpDir); err != nil {
				b.Logger.Warn("failed to remove temporary directory", "path", tmpDir, "error", err)
			}
		}

		if code != 0 {
			errs = append(errs, fmt.Sprintf("command %s failed with exit code %d in %s", strings.Join(cmd.Args, " "), code, cwd))
		}
		if stderr != "" {
			t.mu.Lock()
			t.rawStderr = stderr
			t.mu.Unlock()
			errs = append(errs, stderr)
		}
		if cmd.Stderr != "" {
			if err := os.WriteFile(cmd.Stderr, []byte(stderr), 0o644); err != nil {
				b.Logger.Warn("failed to write command stderr", "path", cmd.Stderr, "error", err)
			}
		}

		exitCode = code
		if code != 0 {
			break
		}
	}

	return strings.Join(errs, "\n"), exitCode, nil
}

// commandEnv merges the ambient environment, the command environment and the per node
// temporary and cache directories. The result is sorted by key.
func (t *RunNodeTask) commandEnv(env map[string]string, tmpDir string) []string {
	merged := make(map[string]string)
	for _, kv := range t.b.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	maps.Copy(merged, env)
	merged["TMPDIR"] = tmpDir
	merged["TEMP"] = tmpDir
	merged["TMP"] = tmpDir
	merged["YA_CACHE_DIR"] = t.root.Path()

	out := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, k+"="+merged[k])
	}
	return out
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// quoteCommand renders env assignments and args as a shell command line.
func quoteCommand(env map[string]string, args []string) string {
	words := make([]string, 0, len(env)+len(args))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		words = append(words, shellQuote(k+"="+env[k]))
	}
	for _, a := range args {
		words = append(words, shellQuote(a))
	}
	return strings.Join(words, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
