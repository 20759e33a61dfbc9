package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ace0731/Image-Converter/config"
	"github.com/Ace0731/Image-Converter/internal/database"
	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/pkg/processor"
	"github.com/Ace0731/Image-Converter/internal/service"
)

const allowedOrigin = "http://localhost:3000"

var testDefaults = config.ConvertConfig{Format: "webp", Quality: 85}

func newTestRouterWith(t *testing.T, publisher service.Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	proc := processor.NewBatchProcessor(processor.NewImageProcessor(processor.MaxWidth, processor.MaxHeight))
	svc := service.NewConversionService(proc, database.NewMemoryBatchRepository(), publisher)
	t.Cleanup(svc.Shutdown)

	return InitRoutes(NewHandlers(svc, publisher, testDefaults), []string{allowedOrigin})
}

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWith(t, nil)
}

func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()

	src := filepath.Join(dir, name)
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 48)), nil))
	require.NoError(t, f.Close())
	return src
}

func waitForBatch(t *testing.T, router *gin.Engine, id string) entity.Batch {
	t.Helper()

	var batch entity.Batch
	require.Eventually(t, func() bool {
		w := doJSON(router, http.MethodGet, "/batch/"+id, nil)
		if w.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(w.Body.Bytes(), &batch) == nil && batch.Status == entity.StatusCompleted
	}, 10*time.Second, 20*time.Millisecond)
	return batch
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "image-converter")
}

func TestConvertAndPoll(t *testing.T) {
	router := newTestRouter(t)
	in, out := t.TempDir(), t.TempDir()

	src := writeJPEG(t, in, "shot.jpg")

	w := doJSON(router, http.MethodPost, "/convert", map[string]interface{}{
		"files":      []string{src},
		"output_dir": out,
		"format":     "webp",
		"quality":    80,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp entity.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, entity.StatusProcessing, resp.Status)

	batch := waitForBatch(t, router, resp.ID)

	require.Len(t, batch.Results, 1)
	assert.True(t, batch.Results[0].OK())
	assert.FileExists(t, filepath.Join(out, "shot.webp"))
}

func TestConvertValidation(t *testing.T) {
	router := newTestRouter(t)
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{name: "missing fields", body: map[string]interface{}{}, code: http.StatusBadRequest},
		{name: "bad format", body: map[string]interface{}{"files": []string{"a"}, "output_dir": "/tmp", "format": "gif"}, code: http.StatusBadRequest},
		{name: "bad quality", body: map[string]interface{}{"files": []string{"a"}, "output_dir": "/tmp", "format": "jpeg", "quality": 0}, code: http.StatusBadRequest},
		{name: "unusable output", body: map[string]interface{}{"files": []string{"a"}, "output_dir": notADir, "format": "png"}, code: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/convert", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestGetBatchNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/batch/does-not-exist", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConvertUsesConfiguredDefaults(t *testing.T) {
	router := newTestRouter(t)
	in, out := t.TempDir(), t.TempDir()
	src := writeJPEG(t, in, "plain.jpg")

	w := doJSON(router, http.MethodPost, "/convert", map[string]interface{}{
		"files":      []string{src},
		"output_dir": out,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp entity.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	batch := waitForBatch(t, router, resp.ID)

	assert.Equal(t, entity.FormatWebP, batch.Request.Format)
	assert.Equal(t, 85, batch.Request.Quality)
	assert.FileExists(t, filepath.Join(out, "plain.webp"))
}

func TestCrossOriginRequests(t *testing.T) {
	router := newTestRouter(t)
	out := t.TempDir()
	victim := filepath.Join(out, "notes.png")
	require.NoError(t, os.WriteFile(victim, []byte("precious"), 0644))
	src := writeJPEG(t, t.TempDir(), "notes.jpg")
	body := map[string]interface{}{"files": []string{src}, "output_dir": out, "format": "png"}

	send := func(method, origin string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(body)
		req := httptest.NewRequest(method, "/convert", &buf)
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("preflight from unknown origin", func(t *testing.T) {
		w := send(http.MethodOptions, "https://evil.example")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple post from unknown origin", func(t *testing.T) {
		w := send(http.MethodPost, "https://evil.example")

		assert.Equal(t, http.StatusForbidden, w.Code)
		data, err := os.ReadFile(victim)
		require.NoError(t, err)
		assert.Equal(t, "precious", string(data))
	})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		w := send(http.MethodOptions, allowedOrigin)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

type unhealthyPublisher struct{}

func (unhealthyPublisher) Publish(context.Context, interface{}) error { return nil }

func (unhealthyPublisher) Close() error { return nil }

func (unhealthyPublisher) HealthCheck() error { return errors.New("connection is closed") }

func TestHealthReportsPublisher(t *testing.T) {
	router := newTestRouterWith(t, unhealthyPublisher{})

	w := doJSON(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection is closed")
}
