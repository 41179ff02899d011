package errors

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingOutput is a ColorOutput keeping every call as "level: text".
type recordingOutput struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingOutput) add(level string, msgs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf("%s: %v", level, msgs))
}

func (r *recordingOutput) Error(msgs ...string)   { r.add("error", msgs) }
func (r *recordingOutput) Warning(msgs ...string) { r.add("warning", msgs) }
func (r *recordingOutput) Info(msgs ...string)    { r.add("info", msgs) }
func (r *recordingOutput) Success(msgs ...string) { r.add("success", msgs) }

func TestCLIHandlerForwardsLevels(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	h.Error("e")
	h.Warning("w")
	h.Info("i")
	h.Success("s")

	assert.Equal(t, []string{"error: [e]", "warning: [w]", "info: [i]", "success: [s]"}, out.lines)
}

func TestCLIHandlerConcurrentUse(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h.Error(fmt.Sprintf("error %d", n))
		}(i)
	}
	wg.Wait()
	assert.Len(t, out.lines, 20)
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{name: "nil", err: nil, want: nil},
		{name: "help", err: options.ErrHelp, want: nil},
		{
			name: "validation error lists every finding",
			err: validation.NewError([]validation.Message{
				{Source: "name", Severity: validation.SeverityError, Description: "name must be specified"},
				{Source: "port", Severity: validation.SeverityError, Description: "port must be between 1 and 65535"},
			}),
			want: []string{"error: [name must be specified]", "error: [port must be between 1 and 65535]"},
		},
		{
			name: "wrapped validation error",
			err: fmt.Errorf("finish: %w", validation.NewError([]validation.Message{
				{Severity: validation.SeverityError, Description: "broken"},
			})),
			want: []string{"error: [broken]"},
		},
		{
			name: "option error",
			err:  &options.OptionError{Option: "times", Err: options.ErrRequiredOption},
			want: []string{"error: [" + (&options.OptionError{Option: "times", Err: options.ErrRequiredOption}).Error() + "]"},
		},
		{
			name: "execution error",
			err:  &command.ExecutionError{Command: "greet", Err: fmt.Errorf("boom")},
			want: []string{"error: [command greet failed: boom]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &recordingOutput{}
			Report(NewCLIHandler(out), tt.err)
			assert.Equal(t, tt.want, out.lines)
		})
	}
}

func TestReportMessagesBySeverity(t *testing.T) {
	out := &recordingOutput{}
	ReportMessages(NewCLIHandler(out), []validation.Message{
		{Severity: validation.SeverityInfo, Description: "fyi"},
		{Severity: validation.SeverityWarning, Description: "careful"},
		{Severity: validation.SeverityError, Description: "wrong"},
	})
	assert.Equal(t, []string{"info: [fyi]", "warning: [careful]", "error: [wrong]"}, out.lines)
}

func TestReportResult(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	ReportResult(h, command.Success("done"))
	ReportResult(h, command.Fail("skipped"))
	ReportResult(h, command.Success(""))

	assert.Equal(t, []string{"success: [done]", "warning: [skipped]"}, out.lines)
}

func TestTUIHandlerStoresMessages(t *testing.T) {
	var seen []Message
	h := NewTUIHandler(func(msg Message) { seen = append(seen, msg) })
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	_, ok := h.Latest()
	assert.False(t, ok)

	h.Error("e")
	h.Warning("w")
	h.Info("i")
	h.Success("s")

	all := h.All()
	require.Len(t, all, 4)
	assert.Equal(t, []MessageType{MessageTypeError, MessageTypeWarning, MessageTypeInfo, MessageTypeSuccess},
		[]MessageType{all[0].Type, all[1].Type, all[2].Type, all[3].Type})
	assert.Equal(t, fixed, all[0].Timestamp)
	assert.Equal(t, all, seen)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "s", latest.Text)

	h.Clear()
	assert.Empty(t, h.All())
}

func TestTUIHandlerKeepsNewestMessages(t *testing.T) {
	h := NewTUIHandler(nil)
	for i := 0; i < maxTUIMessages+5; i++ {
		h.Info(fmt.Sprintf("m%d", i))
	}
	all := h.All()
	require.Len(t, all, maxTUIMessages)
	assert.Equal(t, "m5", all[0].Text)
}

func TestTUIHandlerConcurrentAccess(t *testing.T) {
	h := NewTUIHandler(nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Error("x")
		}()
		go func() {
			defer wg.Done()
			_ = h.All()
		}()
	}
	wg.Wait()
	assert.Len(t, h.All(), 10)
}

func TestMessageTypeFor(t *testing.T) {
	assert.Equal(t, MessageTypeError, MessageTypeFor(validation.SeverityError))
	assert.Equal(t, MessageTypeWarning, MessageTypeFor(validation.SeverityWarning))
	assert.Equal(t, MessageTypeInfo, MessageTypeFor(validation.SeverityInfo))
}
