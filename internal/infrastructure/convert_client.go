package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 * 1024

// ConvertClient implements domain.ConversionClient over HTTP
type ConvertClient struct {
	baseURL     string
	fileField   string
	formatField string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewConvertClient creates a new conversion service client
func NewConvertClient(config domain.BackendConfig, logger *zap.Logger) *ConvertClient {
	fileField := config.FileField
	if fileField == "" {
		fileField = "files"
	}
	formatField := config.FormatField
	if formatField == "" {
		formatField = "targetFormat"
	}
	return &ConvertClient{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		fileField:   fileField,
		formatField: formatField,
		httpClient:  &http.Client{Timeout: config.Timeout},
		logger:      logger,
	}
}

// Convert streams the files as a multipart body to POST /convert
func (c *ConvertClient) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeMultipart(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "*/*")

	c.logger.Debug("Posting conversion request",
		zap.String("url", httpReq.URL.String()),
		zap.Int("files", len(req.Files)),
		zap.String("target", req.TargetFormat))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		pr.CloseWithError(err)
		return nil, domain.NewNetworkFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		serviceErr := parseServiceError(resp)
		c.logger.Warn("Conversion service returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", serviceErr.Message))
		return nil, serviceErr
	}

	return &domain.ConversionResponse{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Filename:      SanitizeFilename(HeaderFilename(resp.Header)),
	}, nil
}

// writeMultipart writes every file under the repeated file field followed
// by the target format
func (c *ConvertClient) writeMultipart(mw *multipart.Writer, req domain.ConversionRequest) error {
	for _, f := range req.Files {
		if f.Source == nil {
			return fmt.Errorf("no data source for %s", f.Name)
		}
		part, err := mw.CreateFormFile(c.fileField, f.Name)
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		src, err := f.Source.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
	}

	if err := mw.WriteField(c.formatField, req.TargetFormat); err != nil {
		return fmt.Errorf("failed to write target format: %w", err)
	}
	return mw.Close()
}

// parseServiceError prefers the JSON error field and falls back to the
// status text
func parseServiceError(resp *http.Response) *domain.ConversionError {
	var payload struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return domain.NewServiceError(resp.StatusCode, payload.Error)
	}

	statusText := http.StatusText(resp.StatusCode)
	if statusText == "" {
		statusText = resp.Status
	}
	return domain.NewServiceError(resp.StatusCode, "Conversion failed: "+statusText)
}

// Ping checks that the service answers at all. The hosted backend sleeps
// when idle and answers 5xx while waking up.
func (c *ConvertClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewNetworkFailure(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode >= 500 {
		return domain.NewServiceError(resp.StatusCode, "Backend not ready: "+resp.Status)
	}
	return nil
}
