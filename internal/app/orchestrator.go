package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scripted stage bounds in percent
const (
	uploadEnd     = 30
	processingEnd = 70
	finalizingEnd = 95
	completeEnd   = 100
)

// Orchestrator runs one conversion request against the remote service while
// a scripted animation plays alongside it
type Orchestrator struct {
	client      domain.ConversionClient
	presenter   *Presenter
	timings     domain.ProgressConfig
	tempDir     string
	archiveName string
	logger      *zap.Logger
}

// NewOrchestrator creates a new transfer orchestrator
func NewOrchestrator(
	client domain.ConversionClient,
	presenter *Presenter,
	timings domain.ProgressConfig,
	download domain.DownloadConfig,
	logger *zap.Logger,
) *Orchestrator {
	archiveName := download.ArchiveName
	if archiveName == "" {
		archiveName = domain.DefaultArchiveName
	}
	return &Orchestrator{
		client:      client,
		presenter:   presenter,
		timings:     timings,
		tempDir:     download.TempDir,
		archiveName: archiveName,
		logger:      logger,
	}
}

// pendingCall is a one-shot future for the network call. resp and err are
// only read after done is closed.
type pendingCall struct {
	done chan struct{}
	resp *domain.ConversionResponse
	err  error
}

func (o *Orchestrator) startCall(ctx context.Context, sel domain.Selection) *pendingCall {
	call := &pendingCall{done: make(chan struct{})}
	req := domain.ConversionRequest{Files: sel.Files, TargetFormat: sel.TargetFormat}
	go func() {
		defer close(call.done)
		call.resp, call.err = o.client.Convert(ctx, req)
	}()
	return call
}

// Submit sends the selection and returns the outcome. The caller owns the
// returned artifact and must Release it.
func (o *Orchestrator) Submit(ctx context.Context, sel domain.Selection, sink domain.ProgressSink) domain.TransferOutcome {
	if sink == nil {
		sink = domain.NopSink
	}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.logger.Info("Submitting conversion",
		zap.Strings("files", sel.FileNames()),
		zap.String("target", sel.TargetFormat),
		zap.Int64("total_size", sel.TotalSize()))

	started := time.Now()
	call := o.startCall(ctx, sel)

	// Upload: the call may still be running when this finishes
	if err := o.runStage(ctx, call, domain.StageUpload, 0, uploadEnd, o.timings.Upload, false, sink); err != nil {
		return o.fail(parent, call, err, sink)
	}

	// Processing: wait for both the animation and the response headers
	if err := o.runStage(ctx, call, domain.StageProcessing, uploadEnd, processingEnd, o.timings.Processing, true, sink); err != nil {
		return o.fail(parent, call, err, sink)
	}

	artifact, err := o.finalize(ctx, call.resp, sink)
	if err != nil {
		return o.fail(parent, nil, err, sink)
	}

	if err := o.presenter.Animate(ctx, domain.StageComplete, finalizingEnd, completeEnd, o.timings.Complete, sink); err != nil {
		if rerr := artifact.Release(); rerr != nil {
			o.logger.Warn("Failed to release artifact", zap.String("path", artifact.Path), zap.Error(rerr))
		}
		return o.fail(parent, nil, err, sink)
	}

	filename := o.resolveFilename(sel, call.resp.Filename)
	o.logger.Info("Conversion completed",
		zap.String("filename", filename),
		zap.Int64("size", artifact.Size),
		zap.Duration("elapsed", time.Since(started)))

	sink.OnProgress(domain.ProgressEvent{Stage: domain.StageDone, Percent: completeEnd, Label: filename})
	return domain.Success(artifact, filename)
}

// runStage animates one stage. With join set, it also waits for the call to
// finish. Without it, the call only matters if it fails during the stage.
// A failed call cancels the animation at once.
func (o *Orchestrator) runStage(
	ctx context.Context,
	call *pendingCall,
	stage domain.Stage,
	from, to float64,
	duration time.Duration,
	join bool,
	sink domain.ProgressSink,
) error {
	g, gctx := errgroup.WithContext(ctx)
	animDone := make(chan struct{})

	g.Go(func() error {
		defer close(animDone)
		return o.presenter.Animate(gctx, stage, from, to, duration, sink)
	})

	g.Go(func() error {
		if join {
			select {
			case <-call.done:
				return call.err
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		done := call.done
		for {
			select {
			case <-done:
				if call.err != nil {
					return call.err
				}
				done = nil
			case <-animDone:
				return nil
			case <-gctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

// finalize streams the response body into a temporary file while the
// finalizing animation runs
func (o *Orchestrator) finalize(ctx context.Context, resp *domain.ConversionResponse, sink domain.ProgressSink) (*domain.Artifact, error) {
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(o.tempDir, "fileconv-*.part")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	artifact := &domain.Artifact{Path: tmp.Name(), ContentType: resp.ContentType}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.presenter.Animate(gctx, domain.StageFinalizing, processingEnd, finalizingEnd, o.timings.Finalizing, sink)
	})
	g.Go(func() error {
		n, err := io.Copy(tmp, &contextReader{ctx: gctx, r: resp.Body})
		artifact.Size = n
		if err != nil {
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return domain.NewNetworkFailure(err)
		}
		return nil
	})

	err = g.Wait()
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to write artifact: %w", cerr)
	}
	if err != nil {
		_ = artifact.Release()
		return nil, err
	}
	return artifact, nil
}

// fail converts err into a failed outcome. A cancelled parent context wins
// over whatever error the cancellation produced downstream.
func (o *Orchestrator) fail(parent context.Context, call *pendingCall, err error, sink domain.ProgressSink) domain.TransferOutcome {
	if call != nil {
		// Drain the call in the background so a late response is closed
		go func() {
			<-call.done
			if call.resp != nil {
				call.resp.Body.Close()
			}
		}()
	}

	var ce *domain.ConversionError
	switch {
	case parent.Err() != nil || errors.Is(err, context.Canceled):
		ce = domain.NewError(domain.KindCancelled, "Conversion cancelled")
		ce.Err = err
	case errors.As(err, &ce):
	default:
		ce = domain.NewNetworkFailure(err)
	}

	o.logger.Warn("Conversion failed",
		zap.String("kind", string(ce.Kind)),
		zap.Int("status_code", ce.StatusCode),
		zap.Error(err))

	sink.OnProgress(domain.ProgressEvent{Stage: domain.StageFailed, Label: ce.Error()})
	return domain.Failure(ce)
}

// resolveFilename picks the download name: header name, then
// <base>.<target> for a single input, then the archive name
func (o *Orchestrator) resolveFilename(sel domain.Selection, headerName string) string {
	if headerName != "" {
		return headerName
	}
	if len(sel.Files) == 1 {
		return sel.Files[0].BaseName() + "." + sel.TargetFormat
	}
	return o.archiveName
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
