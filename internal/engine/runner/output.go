package runner

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"go.trai.ch/noderun/internal/core/domain"
)

// Lines with these suffixes or prefixes are tool chatter and never shown.
var (
	stopSuffixes = []string{
		" has no symbols",
		"define global symbols)",
		"or duplicate input files)",
		"mkstemp'",
		"where xiar is needed)",
		"xiar: executing 'ar'",
		"xiar: executing 'x86_64-k1om-linux-ar'",
		"xiar: executing 'k1om-mpss-linux-ar'",
		"Copyright (C) Microsoft Corporation.  All rights reserved.",
	}
	stopPrefixes = []string{
		"Microsoft (R) Library Manager Version",
	}
)

// maskedRoots is the order in which root paths are replaced by their macros.
var maskedRoots = []string{
	domain.SourceRoot,
	domain.ResourceRoot,
	domain.BuildRoot,
	domain.TestsDataRoot,
	domain.ToolRoot,
}

// fixOutput removes terminal escapes and chatter lines from out and optionally replaces
// root paths with their macros.
func fixOutput(out string, p *domain.Patterns, maskRoots bool) string {
	out = ansi.Strip(out)
	out = strings.ReplaceAll(out, "\r\n", "\n")

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if stopLine(line) {
			continue
		}
		if maskRoots {
			line = mask(line, p)
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func stopLine(line string) bool {
	for _, s := range stopSuffixes {
		if strings.HasSuffix(line, s) {
			return true
		}
	}
	for _, s := range stopPrefixes {
		if strings.HasPrefix(line, s) {
			return true
		}
	}
	return false
}

func mask(line string, p *domain.Patterns) string {
	for _, name := range maskedRoots {
		if v, ok := p.Get(name); ok && v != "" {
			line = strings.ReplaceAll(line, v, domain.Macro(name))
		}
	}
	return line
}
