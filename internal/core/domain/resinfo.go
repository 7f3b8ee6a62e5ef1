package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// ResInfo is the resource vector a task requests from the worker pool.
type ResInfo struct {
	CPU      int `json:"cpu,omitempty"`
	IO       int `json:"io,omitempty"`
	Download int `json:"download,omitempty"`
	Test     int `json:"test,omitempty"`
}

// Add returns the component-wise sum of r and o.
func (r ResInfo) Add(o ResInfo) ResInfo {
	return ResInfo{CPU: r.CPU + o.CPU, IO: r.IO + o.IO, Download: r.Download + o.Download, Test: r.Test + o.Test}
}

// Sub returns the component-wise difference of r and o.
func (r ResInfo) Sub(o ResInfo) ResInfo {
	return ResInfo{CPU: r.CPU - o.CPU, IO: r.IO - o.IO, Download: r.Download - o.Download, Test: r.Test - o.Test}
}

// LessOrEqual reports whether every component of r is at most the one of o.
func (r ResInfo) LessOrEqual(o ResInfo) bool {
	return r.CPU <= o.CPU && r.IO <= o.IO && r.Download <= o.Download && r.Test <= o.Test
}

// IsZero reports whether the vector requests nothing.
func (r ResInfo) IsZero() bool {
	return r == ResInfo{}
}

// String implements fmt.Stringer.
func (r ResInfo) String() string {
	return fmt.Sprintf("{cpu:%d io:%d download:%d test:%d}", r.CPU, r.IO, r.Download, r.Test)
}

// AllCPU is the cpu requirement asking for every test thread.
const AllCPU CPURequirement = "all"

var (
	ioKinds       = map[string]struct{}{"AR": {}, "LD": {}}
	downloadKinds = map[string]struct{}{"SB": {}, "XT": {}, "MD": {}, "NP": {}}

	// testShorthands are the node kinds produced for test runs.
	testShorthands = map[string]struct{}{
		"TS": {}, "TM": {}, "UT": {}, "GT": {}, "PY": {}, "GO": {}, "JV": {}, "EX": {}, "FZ": {}, "BN": {},
	}
)

// LongRunningKind is a non-test kind that is scheduled like a test.
const LongRunningKind = "YT"

// IsTestShorthand reports whether kind is one of the test node kinds.
func IsTestShorthand(kind string) bool {
	_, ok := testShorthands[kind]
	return ok
}

// Classify maps a node to the resources it needs.
// threads is the build thread ceiling, testThreads the ceiling for cpu "all".
func Classify(n *Node, threads, testThreads int) (ResInfo, error) {
	kind := n.Kind()

	if _, ok := ioKinds[kind]; ok {
		return ResInfo{IO: 1}, nil
	}
	if _, ok := downloadKinds[kind]; ok {
		return ResInfo{Download: 1}, nil
	}
	if IsTestShorthand(kind) || kind == LongRunningKind {
		cpu, err := testCPU(n.Requirements.CPU, threads, testThreads)
		if err != nil {
			return ResInfo{}, zerr.With(err, "uid", n.UID)
		}
		return ResInfo{Test: 1, CPU: cpu}, nil
	}
	return ResInfo{CPU: 1}, nil
}

func testCPU(req CPURequirement, threads, testThreads int) (int, error) {
	if req == "" {
		return 1, nil
	}
	if req == AllCPU {
		return testThreads, nil
	}

	return ParseCPURequirement(string(req), threads)
}

// ParseCPURequirement parses a human readable cpu quota, rounds it up and clamps it to
// [1, ceiling]. The clamp happens before the conversion so huge quotas cannot overflow.
func ParseCPURequirement(s string, ceiling int) (int, error) {
	v, err := ParseHumanReadable(s)
	if err != nil {
		return 0, err
	}
	v = math.Ceil(v)
	if v >= float64(ceiling) {
		return max(1, ceiling), nil
	}
	return max(1, int(v)), nil
}

var siPrefixes = map[byte]float64{
	'k': 1e3,
	'K': 1e3,
	'M': 1e6,
	'G': 1e9,
	'T': 1e12,
	'P': 1e15,
	'E': 1e18,
}

// ParseHumanReadable parses a number with an optional SI suffix, e.g. "2", "0.5", "1.5k".
func ParseHumanReadable(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, zerr.With(ErrInvalidCPURequirement, "value", s)
	}

	mult := 1.0
	if m, ok := siPrefixes[s[len(s)-1]]; ok {
		mult = m
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, zerr.With(ErrInvalidCPURequirement, "value", s)
	}
	return v * mult, nil
}
