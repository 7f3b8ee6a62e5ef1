// Package protocol parses the control messages commands write to stderr.
//
// A line starting with ##status## replaces the node status, ##append_tag## adds a display tag
// and any other line starting with ## is a display message in which |n stands for a newline.
// All remaining lines are regular stderr output.
package protocol

import (
	"bufio"
	"io"
	"strings"

	"go.trai.ch/noderun/internal/core/ports"
)

const (
	// Prefix starts a display message.
	Prefix = "##"
	// StatusPrefix starts a status update.
	StatusPrefix = "##status##"
	// AppendTagPrefix starts a display tag.
	AppendTagPrefix = "##append_tag##"

	newlineEscape = "|n"
)

// maxLineSize bounds a single stderr line.
const maxLineSize = 4 * 1024 * 1024

// Parser accumulates regular stderr lines and forwards control messages to a sink.
// It is not safe for concurrent use.
type Parser struct {
	sink   ports.ProgressSink
	stderr strings.Builder
}

// NewParser creates a parser forwarding to sink. A nil sink drops control messages.
func NewParser(sink ports.ProgressSink) *Parser {
	return &Parser{sink: sink}
}

// Line handles one line including its trailing newline, if any.
func (p *Parser) Line(line string) {
	switch {
	case strings.HasPrefix(line, StatusPrefix):
		if p.sink != nil {
			p.sink.SetStatus(strings.TrimRight(line[len(StatusPrefix):], "\r\n"))
		}
	case strings.HasPrefix(line, AppendTagPrefix):
		if p.sink != nil {
			p.sink.AppendTag(strings.TrimSpace(line[len(AppendTagPrefix):]))
		}
	case strings.HasPrefix(line, Prefix):
		if p.sink != nil {
			p.sink.Display(strings.ReplaceAll(line[len(Prefix):], newlineEscape, "\n"))
		}
	default:
		p.stderr.WriteString(line)
	}
}

// Stderr returns the regular lines seen so far.
func (p *Parser) Stderr() string {
	return p.stderr.String()
}

// ReadLines reads r line by line and calls fn with every line, newline included.
// The last line is passed without newline when r does not end with one.
func ReadLines(r io.Reader, fn func(line string)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var partial strings.Builder
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 && partial.Len() < maxLineSize {
			partial.Write(chunk)
		}
		switch err {
		case nil:
			fn(partial.String())
			partial.Reset()
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if partial.Len() > 0 {
				fn(partial.String())
			}
			return nil
		default:
			if partial.Len() > 0 {
				fn(partial.String())
			}
			return err
		}
	}
}

// Parse runs every line of r through a new parser and returns the regular stderr text.
func Parse(r io.Reader, sink ports.ProgressSink) (string, error) {
	p := NewParser(sink)
	err := ReadLines(r, p.Line)
	return p.Stderr(), err
}

// Encoder is a ports.ProgressSink that turns control messages back into protocol lines.
// Parsing an encoded line yields the original message.
type Encoder struct {
	emit func(line string)
}

// NewEncoder creates an Encoder passing every line to emit.
func NewEncoder(emit func(line string)) *Encoder {
	return &Encoder{emit: emit}
}

// Display encodes a display message.
func (e *Encoder) Display(msg string) {
	body, nl := strings.CutSuffix(msg, "\n")
	line := Prefix + strings.ReplaceAll(body, "\n", newlineEscape)
	if nl {
		line += "\n"
	}
	e.emit(line)
}

// SetStatus encodes a status update.
func (e *Encoder) SetStatus(status string) {
	e.emit(StatusPrefix + status + "\n")
}

// AppendTag encodes a display tag.
func (e *Encoder) AppendTag(tag string) {
	e.emit(AppendTagPrefix + tag + "\n")
}
