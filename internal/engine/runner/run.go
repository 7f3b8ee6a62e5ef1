package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

// stderrTailSize is how much of the node stderr is kept in an integrity failure message.
const stderrTailSize = 8 * 1024

// buildRootMacro replaces the root path in registered dir output files.
var buildRootMacro = domain.Macro(domain.BuildRoot)

// build executes the node action in the build root and post-processes the outcome.
// It returns the filtered stderr, the exit code and the execution interval.
func (t *RunNodeTask) build(ctx context.Context) (string, int, [2]time.Time, error) {
	b := t.b
	cfg := b.Config

	if cfg.StrictInputs && !cfg.Sandboxing {
		t.timings.StartStage(domain.StageStrictInputs, b.now())
		if err := t.stageStrictInputs(); err != nil {
			return "", 0, [2]time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrStrictInputsFailed.Error()), "uid", t.node.UID)
		}
	}

	for _, out := range t.node.Outputs {
		dir := filepath.Dir(t.patterns.Fill(out))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, [2]time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrBuildRootCreateFailed.Error()), "output", out)
		}
	}

	start := b.now()
	stderr, exitCode, err := t.execute(ctx)
	if err != nil {
		return "", 0, [2]time.Time{}, err
	}
	finish := b.now()
	timing := [2]time.Time{start, finish}

	if cfg.ShowTimings {
		t.tags.Add(fmt.Sprintf("%4.2fs elapsed", finish.Sub(start).Seconds()))
	}
	if exitCode != 0 {
		t.tags.Add(domain.TagFailed)
	}

	if cfg.DoNotOutputStderrs {
		stderr = ""
	} else {
		stderr = fixOutput(strings.TrimSpace(stderr), t.patterns, cfg.MaskRoots)
	}

	b.Display.Partial(domain.PartialResult{
		UID:       t.node.UID,
		Status:    exitCode,
		Stderrs:   []string{stderr},
		BuildRoot: t.root.Path(),
		Files:     t.patterns.FillAll(t.node.Outputs),
	})

	if exitCode == 0 {
		t.timings.StartStage(domain.StageValidate, b.now())
		if err := t.root.Validate(); err != nil {
			exitCode = domain.InternalErrorExitCode
			stderr = fmt.Sprintf("Command failed to pass build integrity check: %s in %s\n%v\nNode stderr tail:\n%s",
				t.lastCommand(), t.root.Path(), err, tail(stderr, stderrTailSize))
			t.tags.Add(domain.TagFailed)
		}
	}

	if len(t.node.DirOutputs) > 0 {
		if err := t.handleDirOutputs(exitCode); err != nil {
			exitCode = domain.InternalErrorExitCode
			stderr = strings.TrimSpace(stderr + "\n" + err.Error())
			t.tags.Add(domain.TagFailed)
		}
	}

	if b.supportsBuildTime(t.node) {
		if err := b.BuildTime.Touch(ctx, t.node.StaticUID, int64(finish.Sub(start).Seconds())); err != nil {
			b.Logger.Warn("failed to record build time", "uid", t.node.UID, "error", err)
		}
	}

	return stderr, exitCode, timing, nil
}

func (t *RunNodeTask) handleDirOutputs(exitCode int) error {
	root := t.root
	if t.b.Config.DirOutputsTestMode {
		if exitCode == 0 {
			if t.node.StableDirOutputs {
				if err := root.ValidateDirOutputs(); err != nil {
					return err
				}
			}
			if err := root.ExtractDirOutputs(); err != nil {
				return err
			}
		}
		if t.b.Config.RunnerDirOutputs {
			return root.PropagateDirOutputs()
		}
		return nil
	}

	for _, dir := range t.node.DirOutputs {
		for path, err := range t.b.FS.WalkFiles(t.patterns.Fill(dir)) {
			if errors.Is(err, fs.ErrNotExist) {
				break
			}
			if err != nil {
				return err
			}
			root.AddOutput(strings.Replace(path, root.Path(), buildRootMacro, 1))
		}
	}
	return nil
}

// lastCommand renders the arguments of the last node command.
func (t *RunNodeTask) lastCommand() string {
	if len(t.node.Commands) == 0 {
		return ""
	}
	return strings.Join(t.patterns.FillAll(t.node.Commands[len(t.node.Commands)-1].Args), " ")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// missingInputs are sources some nodes read without declaring them.
// $S stands for the source root.
var missingInputs = []string{
	"$S/contrib/tools/python/src/Include/longintrepr.h",
	"$S/contrib/tools/flex-old/FlexLexer.h",
	"$S/contrib/tools/bison/data",
	"$S/contrib/tools/python/src/Lib",
	"$S/contrib/python/lxml/lxml",
	"$S/contrib/tools/cython",
	"$S/build",
}

// stageStrictInputs points SOURCE_ROOT at a private tree inside the build root that holds
// hard links of the declared inputs only.
func (t *RunNodeTask) stageStrictInputs() error {
	base := t.patterns.Sub()
	sourceRoot := base.SourceRoot()

	private := filepath.Join(t.root.Path(), "source_root")
	if err := os.MkdirAll(private, 0o755); err != nil {
		return err
	}
	t.patterns.Set(domain.SourceRoot, private)

	if sourceRoot == "" {
		return nil
	}

	seen := make(map[string]struct{}, len(t.node.Inputs)+len(missingInputs))
	for _, in := range append(append([]string(nil), t.node.Inputs...), missingInputs...) {
		if _, ok := seen[in]; ok {
			continue
		}
		seen[in] = struct{}{}

		fixed := strings.ReplaceAll(in, "$S", domain.Macro(domain.SourceRoot))
		src := base.Fill(fixed)
		if !strings.HasPrefix(src, sourceRoot) {
			continue
		}
		dst := t.patterns.Fill(fixed)
		if src == dst {
			continue
		}
		if _, err := os.Lstat(src); err != nil {
			continue
		}

		if err := t.b.FS.RemoveTree(dst); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := t.b.FS.HardlinkTree(src, dst); err != nil {
			return zerr.With(err, "input", in)
		}
	}
	return nil
}
