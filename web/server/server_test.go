package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/Tutortoise/rowscope/web/scanline"
	"github.com/Tutortoise/rowscope/web/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioGrid() *scanline.Grid {
	g := scanline.NewGrid(4, 1)
	g.Set(0, 0, scanline.Pixel{10, 20, 30})
	g.Set(2, 0, scanline.Pixel{255, 255, 255})
	g.Set(3, 0, scanline.Pixel{100, 100, 100})
	return g
}

func newTestFrontend(t *testing.T) (*Frontend, *viewer.Renderer) {
	t.Helper()
	r := viewer.NewRenderer(scenarioGrid(), scanline.DefaultPalette())
	t.Cleanup(r.Close)
	f := New(models.Sliders{Row: 0, Scale: 40, Resize: 100}, scanline.DefaultPalette(), r.Pool().GetMetrics)
	return f, r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func showFrame(t *testing.T, f *Frontend, r *viewer.Renderer) {
	t.Helper()
	frame, err := r.Render(context.Background(), models.NewDisplayState(f.Sliders()))
	require.NoError(t, err)
	require.NoError(t, f.Show(frame))
	r.Release(frame)
}

func TestFrameBeforeFirstRender(t *testing.T) {
	f, _ := newTestFrontend(t)
	rec := do(t, f.Handler(), "GET", "/frame.png", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "no_frame", resp.Code)
}

func TestFrameAfterShow(t *testing.T) {
	f, r := newTestFrontend(t)
	showFrame(t, f, r)

	rec := do(t, f.Handler(), "GET", "/frame.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestProfileEndpoint(t *testing.T) {
	f, r := newTestFrontend(t)
	showFrame(t, f, r)

	rec := do(t, f.Handler(), "GET", "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Row)
	assert.Equal(t, []int{30, 0, 255, 100}, resp.Values["red"])
	assert.Equal(t, []int{21, 0, 255, 100}, resp.Values["gray"])
	assert.True(t, resp.Visible["blue"])
	assert.Equal(t, 255.0, resp.Stats["green"].Max)
}

func TestChartEndpoint(t *testing.T) {
	f, r := newTestFrontend(t)
	showFrame(t, f, r)

	rec := do(t, f.Handler(), "GET", "/profile.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)
}

func TestSliders(t *testing.T) {
	f, _ := newTestFrontend(t)

	rec := do(t, f.Handler(), "PUT", "/sliders", `{"row": 150, "scale": -3, "resize": 60}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Sliders{Row: 100, Scale: 0, Resize: 60}, f.Sliders())

	rec = do(t, f.Handler(), "GET", "/sliders", "")
	var got models.Sliders
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, f.Sliders(), got)

	rec = do(t, f.Handler(), "PUT", "/sliders", `{"row":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeys(t *testing.T) {
	f, _ := newTestFrontend(t)
	h := f.Handler()

	assert.Equal(t, viewer.KeyNone, f.WaitKey(time.Millisecond))

	assert.Equal(t, http.StatusAccepted, do(t, h, "POST", "/keys/r", "").Code)
	assert.Equal(t, http.StatusAccepted, do(t, h, "POST", "/keys/esc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/keys/ab", "").Code)

	assert.Equal(t, int('r'), f.WaitKey(time.Millisecond))
	assert.Equal(t, viewer.KeyEsc, f.WaitKey(time.Millisecond))

	require.NoError(t, f.Close())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, "POST", "/keys/q", "").Code)
}

func TestMetricsAndIndex(t *testing.T) {
	f, r := newTestFrontend(t)
	showFrame(t, f, r)

	rec := do(t, f.Handler(), "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m viewer.PoolMetrics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, int64(1), m.TotalAcquired)
	assert.Equal(t, int64(1), m.TotalReleased)

	rec = do(t, f.Handler(), "GET", "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>rowscope</title>")
}

func TestControllerQuitsOverHTTP(t *testing.T) {
	f, r := newTestFrontend(t)
	c := viewer.NewController(r, models.NewDisplayState(f.Sliders()), viewer.Config{WaitDelay: time.Millisecond})

	errc := make(chan error, 1)
	go func() { errc <- c.Run(context.Background(), f) }()

	require.Eventually(t, func() bool {
		return do(t, f.Handler(), "GET", "/frame.png", "").Code == http.StatusOK
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusAccepted, do(t, f.Handler(), "POST", "/keys/q", "").Code)
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not stop")
	}
	<-f.Done()
	assert.Equal(t, viewer.Stopped, c.Status())
}
