package infrastructure

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

// memorySource serves in-memory bytes as a file
type memorySource struct {
	data string
	err  error
}

func (m memorySource) Open() (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return io.NopCloser(strings.NewReader(m.data)), nil
}

func memFile(name, data string) domain.SelectedFile {
	return domain.NewSelectedFile(domain.RawFile{
		Name:   name,
		Size:   int64(len(data)),
		Source: memorySource{data: data},
	})
}

// receivedForm is what the fake backend saw
type receivedForm struct {
	files   map[string]string
	order   []string
	targets []string
}

func newFakeBackend(t *testing.T, handler func(c *gin.Context, form *receivedForm)) (*httptest.Server, *receivedForm) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	form := &receivedForm{files: make(map[string]string)}

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/convert", func(c *gin.Context) {
		mf, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for _, fh := range mf.File["files"] {
			form.order = append(form.order, fh.Filename)
			form.files[fh.Filename] = readFileHeader(t, fh)
		}
		form.targets = mf.Value["targetFormat"]
		handler(c, form)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, form
}

func readFileHeader(t *testing.T, fh *multipart.FileHeader) string {
	t.Helper()
	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func newTestClient(baseURL string) *ConvertClient {
	return NewConvertClient(domain.BackendConfig{
		BaseURL:     baseURL + "/",
		Timeout:     5 * time.Second,
		FileField:   "files",
		FormatField: "targetFormat",
	}, zap.NewNop())
}

func TestConvertClient_Success(t *testing.T) {
	server, form := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {
		c.Data(http.StatusOK, "application/pdf", []byte("PDF-BYTES"))
	})
	client := newTestClient(server.URL)

	resp, err := client.Convert(context.Background(), domain.ConversionRequest{
		Files:        []domain.SelectedFile{memFile("photo.png", "png-data")},
		TargetFormat: "pdf",
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PDF-BYTES", string(body))
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Empty(t, resp.Filename)

	assert.Equal(t, map[string]string{"photo.png": "png-data"}, form.files)
	assert.Equal(t, []string{"pdf"}, form.targets)
}

func TestConvertClient_RepeatedFileField(t *testing.T) {
	server, form := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {
		c.Header("Content-Disposition", `attachment; filename="converted_files.zip"`)
		c.Data(http.StatusOK, "application/zip", []byte("ZIP"))
	})
	client := newTestClient(server.URL)

	resp, err := client.Convert(context.Background(), domain.ConversionRequest{
		Files:        []domain.SelectedFile{memFile("a.png", "A"), memFile("b.jpg", "B")},
		TargetFormat: "webp",
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "converted_files.zip", resp.Filename)
	assert.Equal(t, []string{"a.png", "b.jpg"}, form.order)
	assert.Equal(t, "A", form.files["a.png"])
	assert.Equal(t, "B", form.files["b.jpg"])
	assert.Equal(t, []string{"webp"}, form.targets)
}

func TestConvertClient_JSONErrorMessage(t *testing.T) {
	server, _ := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsupported codec"})
	})
	client := newTestClient(server.URL)

	_, err := client.Convert(context.Background(), domain.ConversionRequest{
		Files:        []domain.SelectedFile{memFile("clip.mov", "x")},
		TargetFormat: "mp4",
	})
	require.Error(t, err)
	assert.Equal(t, "unsupported codec", err.Error())

	var ce *domain.ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, domain.KindServiceError, ce.Kind)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
}

func TestConvertClient_StatusTextFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "<html>bad gateway</html>"},
		{"json without error", `{"detail":"x"}`},
		{"blank error", `{"error":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {
				c.Data(http.StatusBadGateway, "text/plain", []byte(tt.body))
			})
			client := newTestClient(server.URL)

			_, err := client.Convert(context.Background(), domain.ConversionRequest{
				Files:        []domain.SelectedFile{memFile("a.png", "x")},
				TargetFormat: "pdf",
			})
			require.ErrorIs(t, err, domain.ErrServiceError)
			assert.Equal(t, "Conversion failed: Bad Gateway", err.Error())
		})
	}
}

func TestConvertClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Convert(context.Background(), domain.ConversionRequest{
		Files:        []domain.SelectedFile{memFile("a.png", "x")},
		TargetFormat: "pdf",
	})
	require.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.True(t, strings.HasPrefix(err.Error(), "Network error:"))
}

func TestConvertClient_SourceOpenFailure(t *testing.T) {
	server, _ := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {
		c.Data(http.StatusOK, "application/pdf", []byte("x"))
	})

	file := domain.NewSelectedFile(domain.RawFile{
		Name:   "gone.png",
		Size:   1,
		Source: memorySource{err: errors.New("file vanished")},
	})
	_, err := newTestClient(server.URL).Convert(context.Background(), domain.ConversionRequest{
		Files:        []domain.SelectedFile{file},
		TargetFormat: "pdf",
	})
	assert.Error(t, err)
}

func TestConvertClient_Cancelled(t *testing.T) {
	release := make(chan struct{})
	server, _ := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {
		<-release
		c.Data(http.StatusOK, "application/pdf", []byte("x"))
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Convert(ctx, domain.ConversionRequest{
		Files:        []domain.SelectedFile{memFile("a.png", "x")},
		TargetFormat: "pdf",
	})
	require.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConvertClient_Ping(t *testing.T) {
	server, _ := newFakeBackend(t, func(c *gin.Context, form *receivedForm) {})
	assert.NoError(t, newTestClient(server.URL).Ping(context.Background()))

	sleeping := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer sleeping.Close()
	err := newTestClient(sleeping.URL).Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrServiceError)
}
