package domain

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
)

// ConversionRequest is what gets posted to the conversion endpoint
type ConversionRequest struct {
	Files        []SelectedFile
	TargetFormat string
}

// ConversionResponse is a successful answer from the conversion endpoint.
// Body must be closed by the receiver.
type ConversionResponse struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	// Filename is the name announced in the response headers, if any
	Filename string
}

// ConversionClient talks to the remote conversion service
type ConversionClient interface {
	// Convert posts the files and returns once response headers are available.
	// Non-success outcomes are returned as *ConversionError.
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResponse, error)

	// Ping checks whether the service is reachable
	Ping(ctx context.Context) error
}

// Artifact is the downloaded conversion result held in a temporary file
type Artifact struct {
	Path        string `json:"-"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// Release removes the temporary file backing the artifact
func (a *Artifact) Release() error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// TransferOutcome is the result of one submission attempt
type TransferOutcome struct {
	Artifact *Artifact
	Filename string
	Err      error
}

// Success creates a successful outcome
func Success(artifact *Artifact, filename string) TransferOutcome {
	return TransferOutcome{Artifact: artifact, Filename: filename}
}

// Failure creates a failed outcome
func Failure(err error) TransferOutcome {
	return TransferOutcome{Err: err}
}

// Succeeded checks if the outcome carries an artifact
func (o TransferOutcome) Succeeded() bool {
	return o.Err == nil && o.Artifact != nil
}

// Message returns the user-visible failure message
func (o TransferOutcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
