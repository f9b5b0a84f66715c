package domain

// Stage is a phase of the scripted progress animation
type Stage string

const (
	StageIdle       Stage = "idle"
	StageUpload     Stage = "upload"
	StageProcessing Stage = "processing"
	StageFinalizing Stage = "finalizing"
	StageComplete   Stage = "complete"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Label returns the text shown next to the progress bar
func (s Stage) Label() string {
	switch s {
	case StageUpload:
		return "Uploading file..."
	case StageProcessing:
		return "Processing conversion..."
	case StageFinalizing:
		return "Finalizing..."
	case StageComplete:
		return "Download ready!"
	default:
		return ""
	}
}

// IsTerminal checks if the stage ends a submission
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// ProgressEvent is one sample of the displayed progress
type ProgressEvent struct {
	Stage   Stage   `json:"stage"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label,omitempty"`
}

// ProgressSink receives progress samples
type ProgressSink interface {
	OnProgress(event ProgressEvent)
}

// ProgressSinkFunc adapts a function to ProgressSink
type ProgressSinkFunc func(event ProgressEvent)

// OnProgress calls f(event)
func (f ProgressSinkFunc) OnProgress(event ProgressEvent) {
	f(event)
}

// NopSink discards progress samples
var NopSink ProgressSink = ProgressSinkFunc(func(ProgressEvent) {})
