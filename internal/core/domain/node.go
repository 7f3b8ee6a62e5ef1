package domain

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// NodeKindKey is the kv key holding the node kind tag.
const NodeKindKey = "p"

// UnknownNodeKind is displayed for nodes without a kind tag.
const UnknownNodeKind = "??"

// Command is a single command line of a node.
type Command struct {
	Args   []string          `json:"cmd_args"`
	Cwd    string            `json:"cwd,omitempty"`
	Env    map[string]string `json:"env,omitempty"`
	Stdout string            `json:"stdout,omitempty"`
	Stderr string            `json:"stderr,omitempty"`
}

// CPURequirement is a cpu quota as written in the graph: "all", a number, or a
// human readable magnitude such as "1.5k".
type CPURequirement string

// UnmarshalJSON accepts both JSON strings and numbers.
func (c *CPURequirement) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CPURequirement(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CPURequirement(n.String())
	return nil
}

// Requirements are the resource requirements a node declares.
type Requirements struct {
	CPU     CPURequirement `json:"cpu,omitempty"`
	Network string         `json:"network,omitempty"`
}

// NodeFunc is an in-process node action.
type NodeFunc func(ctx context.Context, patterns *Patterns) error

// Action is what a node does when executed: either a list of commands or an in-process function.
type Action interface {
	action()
}

// CommandAction runs the node commands in order.
type CommandAction struct {
	Commands []Command
}

// FuncAction calls an in-process function.
type FuncAction struct {
	Fn NodeFunc
}

func (CommandAction) action() {}
func (FuncAction) action()    {}

// NodeError is the expected failure of an in-process node function.
// It carries the exit code reported for the node.
type NodeError struct {
	Message  string
	ExitCode int
}

// Error implements error.
func (e *NodeError) Error() string {
	return e.Message
}

// Node is one action of the build graph.
type Node struct {
	UID                      string            `json:"uid"`
	SelfUID                  string            `json:"self_uid,omitempty"`
	StaticUID                string            `json:"static_uid,omitempty"`
	Inputs                   []string          `json:"inputs,omitempty"`
	Outputs                  []string          `json:"outputs,omitempty"`
	DirOutputs               []string          `json:"dir_outputs,omitempty"`
	Commands                 []Command         `json:"cmds,omitempty"`
	Requirements             Requirements      `json:"requirements"`
	KV                       map[string]string `json:"kv,omitempty"`
	Tags                     []string          `json:"tags,omitempty"`
	Cache                    *bool             `json:"cache,omitempty"`
	Deps                     []string          `json:"deps,omitempty"`
	IgnoreBrokenDependencies bool              `json:"ignore_broken_dependencies,omitempty"`
	StableDirOutputs         bool              `json:"stable_dir_outputs,omitempty"`
	Priority                 int               `json:"priority,omitempty"`

	// Func replaces Commands when set.
	Func NodeFunc `json:"-"`

	// Refcount is the number of consumers of the node build root.
	Refcount int `json:"-"`

	// ContentUID and OutputDigests are written by the node's own task and read by
	// dependents only after the scheduler has observed the node result.
	ContentUID    string         `json:"-"`
	OutputDigests *OutputDigests `json:"-"`
}

// UnmarshalJSON decodes a graph node. A node level cmd_args becomes the first command and
// node level cwd, env, stdout and stderr are defaults for every command.
// "commands" and "cacheable" are accepted as spellings of "cmds" and "cache".
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var w struct {
		plain
		CmdArgs   []string          `json:"cmd_args,omitempty"`
		Cwd       string            `json:"cwd,omitempty"`
		Env       map[string]string `json:"env,omitempty"`
		Stdout    string            `json:"stdout,omitempty"`
		Stderr    string            `json:"stderr,omitempty"`
		Commands  []Command         `json:"commands,omitempty"`
		Cacheable *bool             `json:"cacheable,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*n = Node(w.plain)
	if len(n.Commands) == 0 {
		n.Commands = w.Commands
	}
	if n.Cache == nil {
		n.Cache = w.Cacheable
	}

	defaults := Command{Cwd: w.Cwd, Env: w.Env, Stdout: w.Stdout, Stderr: w.Stderr}
	var cmds []Command
	if len(w.CmdArgs) > 0 {
		cmds = append(cmds, withDefaults(Command{Args: w.CmdArgs}, defaults))
	}
	for _, c := range n.Commands {
		cmds = append(cmds, withDefaults(c, defaults))
	}
	n.Commands = cmds

	return nil
}

func withDefaults(c, defaults Command) Command {
	if c.Cwd == "" {
		c.Cwd = defaults.Cwd
	}
	if c.Env == nil {
		c.Env = defaults.Env
	}
	if c.Stdout == "" {
		c.Stdout = defaults.Stdout
	}
	if c.Stderr == "" {
		c.Stderr = defaults.Stderr
	}
	return c
}

// Action resolves what the node does when executed.
func (n *Node) Action() Action {
	if n.Func != nil {
		return FuncAction{Fn: n.Func}
	}
	return CommandAction{Commands: n.Commands}
}

// Cacheable reports whether the node outputs may be put into caches.
func (n *Node) Cacheable() bool {
	return n.Cache == nil || *n.Cache
}

// Hashable reports whether the node has its own content hash.
func (n *Node) Hashable() bool {
	return n.SelfUID != ""
}

// HasSelfUIDSupport reports whether the node can be served by content uid.
func (n *Node) HasSelfUIDSupport() bool {
	return n.Hashable() && n.Cacheable()
}

// Kind returns the node kind tag.
func (n *Node) Kind() string {
	return n.KV[NodeKindKey]
}

// ShortName returns the node kind for display, or "??" when the node has none.
func (n *Node) ShortName() string {
	if k := n.Kind(); k != "" {
		return k
	}
	return UnknownNodeKind
}

// String renders the node uid followed by at most six outputs.
func (n *Node) String() string {
	const limit = 6
	outputs := n.Outputs
	if len(outputs) > limit {
		outputs = append(outputs[:limit:limit], "<"+strconv.Itoa(len(n.Outputs)-limit)+" more outputs>")
	}
	return n.UID + " " + strings.Join(outputs, " ")
}
