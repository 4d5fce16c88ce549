package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/Tutortoise/rowscope/web/scanline"
	"github.com/Tutortoise/rowscope/web/viewer"
	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
)

const keyQueueSize = 16

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ProfileResponse struct {
	Row     int                              `json:"row"`
	Sliders models.Sliders                   `json:"sliders"`
	Visible map[string]bool                  `json:"visible"`
	Values  map[string][]int                 `json:"values"`
	Stats   map[string]scanline.ChannelStats `json:"stats"`
}

// Frontend exposes the render loop over HTTP. Browsers push slider values
// and key presses; the loop pulls them through the viewer.Frontend methods.
type Frontend struct {
	router  *mux.Router
	keys    chan int
	palette scanline.Palette
	metrics func() viewer.PoolMetrics

	mu      sync.RWMutex
	sliders models.Sliders
	frame   []byte
	profile scanline.Profile
	state   models.DisplayState
	shown   bool

	closeOnce sync.Once
	done      chan struct{}
}

func New(initial models.Sliders, palette scanline.Palette, metrics func() viewer.PoolMetrics) *Frontend {
	f := &Frontend{
		router:  mux.NewRouter(),
		keys:    make(chan int, keyQueueSize),
		palette: palette,
		metrics: metrics,
		sliders: initial.Clamp(),
		done:    make(chan struct{}),
	}
	f.routes()
	return f
}

func (f *Frontend) routes() {
	f.router.HandleFunc("/frame.png", f.handleFrame).Methods("GET")
	f.router.HandleFunc("/profile.png", f.handleChart).Methods("GET")
	f.router.HandleFunc("/api/profile", f.handleProfile).Methods("GET")
	f.router.HandleFunc("/sliders", f.handleGetSliders).Methods("GET")
	f.router.HandleFunc("/sliders", f.handlePutSliders).Methods("PUT")
	f.router.HandleFunc("/keys/{key}", f.handleKey).Methods("POST")
	f.router.HandleFunc("/metrics", f.handleMetrics).Methods("GET")
	f.router.PathPrefix("/").Handler(staticHandler()).Methods("GET")
}

func (f *Frontend) Handler() http.Handler { return f.router }

// Done is closed once the render loop has closed the frontend.
func (f *Frontend) Done() <-chan struct{} { return f.done }

func (f *Frontend) Sliders() models.Sliders {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sliders
}

func (f *Frontend) Show(frame *viewer.Frame) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame.Display, imaging.PNG); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame = buf.Bytes()
	f.profile = frame.Profile.Clone()
	f.state = frame.State
	f.shown = true
	return nil
}

func (f *Frontend) WaitKey(delay time.Duration) int {
	select {
	case key := <-f.keys:
		return key
	case <-time.After(delay):
		return viewer.KeyNone
	case <-f.done:
		return viewer.KeyNone
	}
}

func (f *Frontend) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *Frontend) closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// PressKey queues a key for the render loop. It fails when the queue is full
// or the loop has stopped.
func (f *Frontend) PressKey(key int) error {
	if f.closed() {
		return errors.New("viewer has stopped")
	}
	select {
	case f.keys <- key:
		return nil
	default:
		return errors.New("key queue is full")
	}
}

// ParseKey accepts a single character or "esc".
func ParseKey(s string) (int, error) {
	if s == "esc" {
		return viewer.KeyEsc, nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid key %q", s)
	}
	return int(s[0]), nil
}

func (f *Frontend) handleFrame(w http.ResponseWriter, _ *http.Request) {
	f.mu.RLock()
	frame := f.frame
	f.mu.RUnlock()

	if frame == nil {
		sendErrorResponse(w, "no_frame", "No frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(frame)
}

func (f *Frontend) snapshot() (scanline.Profile, models.DisplayState, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.profile, f.state, f.shown
}

func (f *Frontend) handleProfile(w http.ResponseWriter, _ *http.Request) {
	profile, state, ok := f.snapshot()
	if !ok {
		sendErrorResponse(w, "no_frame", "No frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	resp := ProfileResponse{
		Row:     profile.Row,
		Sliders: state.Sliders,
		Visible: make(map[string]bool, models.NumChannels),
		Values:  make(map[string][]int, models.NumChannels),
		Stats:   scanline.Stats(&profile),
	}
	for _, c := range models.AllChannels {
		resp.Visible[c.String()] = state.Visible[c]
		values := profile.Channel(c)
		ints := make([]int, len(values))
		for i, v := range values {
			ints[i] = int(v)
		}
		resp.Values[c.String()] = ints
	}
	sendJSON(w, http.StatusOK, resp)
}

func (f *Frontend) handleChart(w http.ResponseWriter, _ *http.Request) {
	profile, state, ok := f.snapshot()
	if !ok {
		sendErrorResponse(w, "no_frame", "No frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	err := scanline.RenderChart(&buf, &profile, scanline.ChartOptions{
		Visible: state.Visible,
		Palette: f.palette,
	})
	if err != nil {
		sendErrorResponse(w, "chart_error", err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (f *Frontend) handleGetSliders(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, f.Sliders())
}

func (f *Frontend) handlePutSliders(w http.ResponseWriter, r *http.Request) {
	var s models.Sliders
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		sendErrorResponse(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	s = s.Clamp()

	f.mu.Lock()
	f.sliders = s
	f.mu.Unlock()

	sendJSON(w, http.StatusOK, s)
}

func (f *Frontend) handleKey(w http.ResponseWriter, r *http.Request) {
	key, err := ParseKey(mux.Vars(r)["key"])
	if err != nil {
		sendErrorResponse(w, "invalid_key", err.Error(), http.StatusBadRequest)
		return
	}
	if err := f.PressKey(key); err != nil {
		sendErrorResponse(w, "key_rejected", err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (f *Frontend) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if f.metrics == nil {
		sendJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	sendJSON(w, http.StatusOK, f.metrics())
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func sendErrorResponse(w http.ResponseWriter, code, message string, status int) {
	sendJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
