package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

// NotificationService handles sending desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptQuote(message), appleScriptQuote(title))
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyConversionCompleted sends notification when a conversion was saved
func (n *NotificationService) NotifyConversionCompleted(filename string) {
	n.Send("Conversion Completed", "Saved "+truncateString(filename, 40))
}

// NotifyConversionFailed sends notification when a conversion fails
func (n *NotificationService) NotifyConversionFailed(target string, err error) {
	title := "Conversion Failed"
	message := fmt.Sprintf("%s: %s", strings.ToUpper(target), truncateString(err.Error(), 60))
	n.Send(title, message)
}

// appleScriptQuote quotes s as an AppleScript string literal
func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
