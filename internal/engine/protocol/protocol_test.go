package protocol_test

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.trai.ch/noderun/internal/engine/protocol"
	"go.uber.org/mock/gomock"
)

type recordingSink struct {
	status   string
	tags     *domain.Tags
	messages []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{tags: domain.NewTags()}
}

func (s *recordingSink) Display(msg string)      { s.messages = append(s.messages, msg) }
func (s *recordingSink) SetStatus(status string) { s.status = status }
func (s *recordingSink) AppendTag(tag string)    { s.tags.Add(tag) }

func TestParse_StatusTagAndStderr(t *testing.T) {
	sink := newRecordingSink()
	input := "##status##building\n##append_tag##fast\nregular line\n##append_tag## fast \n"

	stderr, err := protocol.Parse(strings.NewReader(input), sink)
	require.NoError(t, err)

	assert.Equal(t, "building", sink.status)
	assert.Equal(t, []string{"fast"}, sink.tags.List())
	assert.Equal(t, "regular line\n", stderr)
	assert.Empty(t, sink.messages)
}

func TestParse_DisplayMessage(t *testing.T) {
	sink := newRecordingSink()

	stderr, err := protocol.Parse(strings.NewReader("##linking|nlibfoo.a\n"), sink)
	require.NoError(t, err)

	assert.Empty(t, stderr)
	assert.Equal(t, []string{"linking\nlibfoo.a\n"}, sink.messages)
}

func TestParser_CheckOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockProgressSink(ctrl)

	gomock.InOrder(
		sink.EXPECT().SetStatus("##append_tag##x"),
		sink.EXPECT().AppendTag("y"),
		sink.EXPECT().Display("status"),
	)

	p := protocol.NewParser(sink)
	p.Line("##status####append_tag##x\n")
	p.Line("##append_tag##y\n")
	p.Line("##status")
	p.Line("# not a message\n")

	assert.Equal(t, "# not a message\n", p.Stderr())
}

func TestParse_NilSinkDropsMessages(t *testing.T) {
	stderr, err := protocol.Parse(strings.NewReader("##status##x\nkeep\n##hidden"), nil)
	require.NoError(t, err)
	assert.Equal(t, "keep\n", stderr)
}

func TestReadLines(t *testing.T) {
	t.Run("last line without newline", func(t *testing.T) {
		var lines []string
		require.NoError(t, protocol.ReadLines(strings.NewReader("a\nb"), func(l string) { lines = append(lines, l) }))
		assert.Equal(t, []string{"a\n", "b"}, lines)
	})

	t.Run("long line", func(t *testing.T) {
		long := strings.Repeat("x", 200*1024)
		var lines []string
		require.NoError(t, protocol.ReadLines(strings.NewReader(long+"\n"), func(l string) { lines = append(lines, l) }))
		require.Len(t, lines, 1)
		assert.Len(t, lines[0], len(long)+1)
	})

	t.Run("read error keeps partial line", func(t *testing.T) {
		boom := errors.New("boom")
		r := iotest.ErrReader(boom)
		var lines []string
		err := protocol.ReadLines(r, func(l string) { lines = append(lines, l) })
		require.ErrorIs(t, err, boom)
		assert.Empty(t, lines)
	})
}

func TestEncoder_RoundTrip(t *testing.T) {
	var lines []string
	enc := protocol.NewEncoder(func(line string) { lines = append(lines, line) })

	enc.SetStatus("linking app")
	enc.AppendTag("remote")
	enc.Display("compiled\na.o\n")
	enc.Display("no newline")

	assert.Equal(t, []string{
		"##status##linking app\n",
		"##append_tag##remote\n",
		"##compiled|na.o\n",
		"##no newline",
	}, lines)

	sink := newRecordingSink()
	p := protocol.NewParser(sink)
	for _, line := range lines {
		p.Line(line)
	}
	assert.Empty(t, p.Stderr())
	assert.Equal(t, "linking app", sink.status)
	assert.Equal(t, []string{"remote"}, sink.tags.List())
	assert.Equal(t, []string{"compiled\na.o\n", "no newline"}, sink.messages)
}
