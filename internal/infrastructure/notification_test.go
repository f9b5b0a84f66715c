package infrastructure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

type capturedCommand struct {
	name string
	args []string
}

func newCapturingService(method string, enabled bool) (*NotificationService, *[]capturedCommand) {
	var calls []capturedCommand
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, zap.NewNop())
	n.run = func(name string, args ...string) error {
		calls = append(calls, capturedCommand{name: name, args: args})
		return nil
	}
	return n, &calls
}

func TestNotification_Disabled(t *testing.T) {
	n, calls := newCapturingService("notify-send", false)

	n.NotifyConversionCompleted("photo.pdf")

	assert.Empty(t, *calls)
}

func TestNotification_NotifySend(t *testing.T) {
	n, calls := newCapturingService("notify-send", true)

	n.NotifyConversionCompleted("photo.pdf")
	n.NotifyConversionFailed("mp4", errors.New("unsupported codec"))

	assert.Equal(t, []capturedCommand{
		{name: "notify-send", args: []string{"Conversion Completed", "Saved photo.pdf"}},
		{name: "notify-send", args: []string{"Conversion Failed", "MP4: unsupported codec"}},
	}, *calls)
}

func TestNotification_OSAScriptQuotes(t *testing.T) {
	n, calls := newCapturingService("osascript", true)

	n.NotifyConversionCompleted(`say "hi".pdf`)

	assert.Len(t, *calls, 1)
	assert.Equal(t, "osascript", (*calls)[0].name)
	assert.Equal(t, []string{"-e", `display notification "Saved say \"hi\".pdf" with title "Conversion Completed"`}, (*calls)[0].args)
}

func TestNotification_UnknownMethod(t *testing.T) {
	n, calls := newCapturingService("carrier-pigeon", true)

	assert.NoError(t, n.Send("t", "m"))
	assert.Empty(t, *calls)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
	assert.Equal(t, "éé...", truncateString("éééé", 2))
}
