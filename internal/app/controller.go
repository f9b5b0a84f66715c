package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

// Event is a user action dispatched into the Controller
type Event interface {
	eventName() string
}

// FilesSelected replaces the selection with a new pick or drop
type FilesSelected struct {
	Files []domain.RawFile
}

// TargetChosen picks a target format
type TargetChosen struct {
	Code string
}

// ResetRequested clears everything
type ResetRequested struct{}

// SubmitRequested runs a conversion and waits for it
type SubmitRequested struct{}

func (FilesSelected) eventName() string   { return "files_selected" }
func (TargetChosen) eventName() string    { return "target_chosen" }
func (ResetRequested) eventName() string  { return "reset_requested" }
func (SubmitRequested) eventName() string { return "submit_requested" }

// StatusLevel is the tone of the status line
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusSuccess StatusLevel = "success"
	StatusError   StatusLevel = "error"
)

// Status is the single user-visible status message
type Status struct {
	Level StatusLevel `json:"level,omitempty"`
	Text  string      `json:"text,omitempty"`
}

// View is everything a front end needs to render the current state
type View struct {
	Selection   domain.Selection `json:"selection"`
	Targets     Targets          `json:"targets"`
	TargetsErr  string           `json:"targets_error,omitempty"`
	Submittable bool             `json:"submittable"`
	Busy        bool             `json:"busy"`
	SubmitLabel string           `json:"submit_label"`
	Status      Status           `json:"status"`
	SavedPath   string           `json:"saved_path,omitempty"`
}

// Submitter runs one conversion
type Submitter interface {
	Submit(ctx context.Context, sel domain.Selection, sink domain.ProgressSink) domain.TransferOutcome
}

// ArtifactSaver delivers a finished artifact under its resolved filename
// and returns where it ended up
type ArtifactSaver interface {
	Save(artifact *domain.Artifact, filename string) (string, error)
}

// Notifier tells the user about finished conversions outside the UI
type Notifier interface {
	NotifyConversionCompleted(filename string)
	NotifyConversionFailed(target string, err error)
}

// EventLogger writes categorized event logs
type EventLogger interface {
	LogTransferEvent(event string, fields ...zap.Field)
	LogAppError(msg string, fields ...zap.Field)
}

// Controller owns the selection state and serializes every event against it
type Controller struct {
	validator *Validator
	submitter Submitter
	saver     ArtifactSaver
	repo      domain.ConversionRepository
	notifier  Notifier
	events    EventLogger
	sink      domain.ProgressSink
	logger    *zap.Logger

	mu        sync.Mutex
	state     *SelectionState
	busy      bool
	status    Status
	savedPath string
}

// ControllerOption configures optional collaborators
type ControllerOption func(*Controller)

// WithHistory records finished submissions
func WithHistory(repo domain.ConversionRepository) ControllerOption {
	return func(c *Controller) { c.repo = repo }
}

// WithNotifier sends desktop notifications
func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

// WithEventLogger writes transfer and error events to categorized logs
func WithEventLogger(l EventLogger) ControllerOption {
	return func(c *Controller) { c.events = l }
}

// WithProgressSink forwards progress events of every submission
func WithProgressSink(sink domain.ProgressSink) ControllerOption {
	return func(c *Controller) { c.sink = sink }
}

// NewController creates a new controller
func NewController(
	validator *Validator,
	submitter Submitter,
	saver ArtifactSaver,
	logger *zap.Logger,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		validator: validator,
		submitter: submitter,
		saver:     saver,
		sink:      domain.NopSink,
		logger:    logger,
		state:     NewSelectionState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the current view
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Dispatch applies one event. The returned error, if any, is also the
// view's status text.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (View, error) {
	c.logger.Debug("Dispatching event", zap.String("event", ev.eventName()))

	switch e := ev.(type) {
	case FilesSelected:
		return c.selectFiles(e.Files)
	case TargetChosen:
		return c.chooseTarget(e.Code)
	case ResetRequested:
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Reset()
		c.status = Status{}
		c.savedPath = ""
		return c.viewLocked(), nil
	case SubmitRequested:
		sel, err := c.beginSubmit()
		if err != nil {
			return c.View(), err
		}
		return c.runSubmit(ctx, sel)
	default:
		return c.View(), fmt.Errorf("unknown event: %T", ev)
	}
}

// StartSubmit begins a conversion in the background. The channel receives
// the final view and is then closed.
func (c *Controller) StartSubmit(ctx context.Context) (<-chan View, error) {
	sel, err := c.beginSubmit()
	if err != nil {
		return nil, err
	}

	out := make(chan View, 1)
	go func() {
		defer close(out)
		view, _ := c.runSubmit(ctx, sel)
		out <- view
	}()
	return out, nil
}

func (c *Controller) selectFiles(raw []domain.RawFile) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.savedPath = ""
	sel, err := c.validator.Validate(raw)
	if err != nil {
		c.state.Reset()
		c.status = Status{Level: StatusError, Text: err.Error()}
		c.logger.Info("Selection rejected", zap.Int("files", len(raw)), zap.Error(err))
		return c.viewLocked(), err
	}

	c.state.SetFiles(sel.Files)
	switch {
	case c.state.TargetsErr() != nil:
		c.status = Status{Level: StatusError, Text: c.state.TargetsErr().Error()}
	case c.validator.Truncated(raw):
		c.status = Status{Level: StatusInfo, Text: fmt.Sprintf("Only the first %d files were kept.", c.validator.Limits().MaxFiles)}
	default:
		c.status = Status{}
	}

	c.logger.Debug("Selection updated",
		zap.Strings("files", sel.FileNames()),
		zap.Bool("degraded", c.state.Degraded()))
	return c.viewLocked(), nil
}

func (c *Controller) chooseTarget(code string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.SetTargetFormat(code); err != nil {
		c.status = Status{Level: StatusError, Text: err.Error()}
		return c.viewLocked(), err
	}
	c.status = Status{}
	return c.viewLocked(), nil
}

// beginSubmit checks the preconditions and marks the controller busy
func (c *Controller) beginSubmit() (domain.Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return domain.Selection{}, domain.NewError(domain.KindBusy, "A conversion is already running.")
	}
	if !c.state.IsSubmittable() {
		err := domain.NewError(domain.KindNotSubmittable, "Please select a file and target format.")
		c.status = Status{Level: StatusError, Text: err.Error()}
		return domain.Selection{}, err
	}

	c.busy = true
	c.status = Status{}
	c.savedPath = ""
	return c.state.Selection(), nil
}

// runSubmit performs the conversion and side effects; busy is always
// cleared before it returns
func (c *Controller) runSubmit(ctx context.Context, sel domain.Selection) (View, error) {
	record := domain.NewConversionRecord(sel)
	c.logTransfer("conversion_started", record)

	var (
		status    Status
		savedPath string
		err       error
	)

	outcome := c.submitter.Submit(ctx, sel, c.sink)
	if outcome.Succeeded() {
		savedPath, err = c.saver.Save(outcome.Artifact, outcome.Filename)
		if rerr := outcome.Artifact.Release(); rerr != nil {
			c.logger.Warn("Failed to release artifact", zap.Error(rerr))
		}
		if err != nil {
			c.logError("saving artifact failed", err)
			err = fmt.Errorf("failed to save %s: %w", outcome.Filename, err)
		}
	} else {
		err = outcome.Err
	}

	if err != nil {
		status = Status{Level: StatusError, Text: err.Error()}
		record.MarkFailed(err)
	} else {
		status = Status{Level: StatusSuccess, Text: "Success! Saved " + outcome.Filename}
		record.MarkCompleted(outcome.Filename, savedPath)
	}

	c.mu.Lock()
	c.busy = false
	c.status = status
	c.savedPath = savedPath
	view := c.viewLocked()
	c.mu.Unlock()

	c.finish(record, err)
	return view, err
}

// finish stores history and sends notifications
func (c *Controller) finish(record *domain.ConversionRecord, err error) {
	if c.repo != nil {
		if rerr := c.repo.Create(record); rerr != nil {
			c.logger.Error("Failed to record conversion", zap.String("id", record.ID), zap.Error(rerr))
			c.logError("history write failed", rerr)
		}
	}

	if err != nil {
		c.logTransfer("conversion_failed", record)
		if c.notifier != nil {
			c.notifier.NotifyConversionFailed(record.TargetFormat, err)
		}
		return
	}

	c.logTransfer("conversion_completed", record)
	if c.notifier != nil {
		c.notifier.NotifyConversionCompleted(record.Filename)
	}
}

func (c *Controller) logTransfer(event string, record *domain.ConversionRecord) {
	if c.events == nil {
		return
	}
	fields := []zap.Field{
		zap.String("id", record.ID),
		zap.String("files", record.FileNames),
		zap.Int("file_count", record.FileCount),
		zap.Int64("total_size", record.TotalSize),
		zap.String("target", record.TargetFormat),
		zap.String("status", string(record.Status)),
	}
	if record.Filename != "" {
		fields = append(fields, zap.String("filename", record.Filename))
	}
	if record.ErrorMessage != "" {
		fields = append(fields, zap.String("error", record.ErrorMessage))
	}
	c.events.LogTransferEvent(event, fields...)
}

func (c *Controller) logError(msg string, err error) {
	if c.events != nil {
		c.events.LogAppError(msg, zap.Error(err))
	}
}

func (c *Controller) viewLocked() View {
	sel := c.state.Selection()
	view := View{
		Selection:   sel,
		Targets:     c.state.Targets(),
		Submittable: !c.busy && c.state.IsSubmittable(),
		Busy:        c.busy,
		SubmitLabel: submitLabel(sel.TargetFormat, c.busy),
		Status:      c.status,
		SavedPath:   c.savedPath,
	}
	if err := c.state.TargetsErr(); err != nil {
		view.TargetsErr = err.Error()
	}
	return view
}

func submitLabel(target string, busy bool) string {
	switch {
	case busy:
		return "Converting..."
	case target == "":
		return "Select Format to Convert"
	default:
		if e, ok := domain.FindEntry(target); ok {
			return "Convert to " + e.Label
		}
		return "Convert to " + strings.ToUpper(target)
	}
}
