package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// TargetFixture is one debuggable target advertised by the fake endpoint.
// Empty optional fields are omitted from the JSON, matching how a browser
// reports targets that have no title or attached debugger URL.
type TargetFixture struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	Title                string `json:"title,omitempty"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl,omitempty"`
}

// FakeBrowser simulates the HTTP metadata routes and the WebSocket debugger
// endpoint a headless browser exposes on its debugging port. It also serves
// a /health route so it can stand in for the fronting reverse proxy.
type FakeBrowser struct {
	Server *httptest.Server

	mu            sync.Mutex
	targets       []TargetFixture
	healthStatus  int
	versionStatus int
	listStatus    int
	omitWSURL     bool
	versionHits   int
	listHits      int
	healthHits    int
	wsHits        int
	requests      []string
}

// NewFakeBrowser starts a fake debugging endpoint advertising the given
// targets. The server is shut down automatically when the test finishes.
func NewFakeBrowser(t *testing.T, targets ...TargetFixture) *FakeBrowser {
	t.Helper()

	fb := &FakeBrowser{
		targets:       targets,
		healthStatus:  http.StatusOK,
		versionStatus: http.StatusOK,
		listStatus:    http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/json/version", fb.handleVersion)
	mux.HandleFunc("/json/list", fb.handleList)
	mux.HandleFunc("/health", fb.handleHealth)
	mux.HandleFunc("/devtools/", fb.handleWebSocket)

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Server.Close)

	return fb
}

// URL returns the endpoint base URL.
func (fb *FakeBrowser) URL() string {
	return fb.Server.URL
}

// Host returns the host part of the endpoint address.
func (fb *FakeBrowser) Host() string {
	u, _ := url.Parse(fb.Server.URL)
	return u.Hostname()
}

// Port returns the port the endpoint listens on.
func (fb *FakeBrowser) Port() int {
	u, _ := url.Parse(fb.Server.URL)
	port, _ := strconv.Atoi(u.Port())
	return port
}

// SetHealthStatus changes the status code served on /health.
func (fb *FakeBrowser) SetHealthStatus(code int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.healthStatus = code
}

// SetVersionStatus changes the status code served on /json/version.
func (fb *FakeBrowser) SetVersionStatus(code int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.versionStatus = code
}

// SetListStatus changes the status code served on /json/list.
func (fb *FakeBrowser) SetListStatus(code int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.listStatus = code
}

// OmitWebSocketURL makes /json/version advertise no WebSocket debugger URL.
func (fb *FakeBrowser) OmitWebSocketURL() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.omitWSURL = true
}

// VersionHits reports how many times /json/version was requested.
func (fb *FakeBrowser) VersionHits() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.versionHits
}

// ListHits reports how many times /json/list was requested.
func (fb *FakeBrowser) ListHits() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.listHits
}

// HealthHits reports how many times /health was requested.
func (fb *FakeBrowser) HealthHits() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.healthHits
}

// WebSocketHits reports how many debugger WebSocket connections were opened.
func (fb *FakeBrowser) WebSocketHits() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.wsHits
}

// Requests returns the request paths in arrival order.
func (fb *FakeBrowser) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	paths := make([]string, len(fb.requests))
	copy(paths, fb.requests)
	return paths
}

func (fb *FakeBrowser) handleVersion(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.versionHits++
	fb.requests = append(fb.requests, r.URL.Path)
	status := fb.versionStatus
	omitWSURL := fb.omitWSURL
	fb.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	version := map[string]string{
		"Browser":          "HeadlessChrome/126.0.6478.126",
		"Protocol-Version": "1.3",
		"User-Agent":       "Mozilla/5.0 (X11; Linux x86_64) HeadlessChrome/126.0.6478.126",
		"V8-Version":       "12.6.228.28",
		"WebKit-Version":   "537.36",
	}
	if !omitWSURL {
		version["webSocketDebuggerUrl"] = "ws://" + r.Host + "/devtools/browser/fake-browser-id"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(version)
}

func (fb *FakeBrowser) handleList(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.listHits++
	fb.requests = append(fb.requests, r.URL.Path)
	status := fb.listStatus
	targets := fb.targets
	fb.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(targets)
}

func (fb *FakeBrowser) handleHealth(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.healthHits++
	fb.requests = append(fb.requests, r.URL.Path)
	status := fb.healthStatus
	fb.mu.Unlock()

	w.WriteHeader(status)
	_, _ = w.Write([]byte("healthy\n"))
}

func (fb *FakeBrowser) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.requests = append(fb.requests, r.URL.Path)
	fb.mu.Unlock()

	conn, err := (&websocket.Upgrader{}).Upgrade(w, r, w.Header())
	if err != nil {
		return
	}

	fb.mu.Lock()
	fb.wsHits++
	fb.mu.Unlock()

	// Drain until the client closes; the default close handler replies
	// with the matching close frame.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	_ = conn.Close()
}
