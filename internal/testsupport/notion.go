// Package testsupport provides fakes shared by package tests.
package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeBlock is one child node served by the fake Notion API.
type FakeBlock struct {
	ID   string
	Type string
	Text string
	// Payload, when set, replaces the generated type payload verbatim.
	Payload     string
	HasChildren bool
}

// FakePage is one database row served by the fake Notion API.
type FakePage struct {
	ID    string
	Title string
	// Properties, when set, replaces the generated properties object verbatim.
	Properties string
	Created    string
}

// FakeNotion is an in-memory Notion API routed with chi.
type FakeNotion struct {
	Server   *httptest.Server
	PageSize int

	mu       sync.Mutex
	pages    map[string][]FakePage
	children map[string][]FakeBlock
	denied   map[string]int
	requests atomic.Int64
}

// NewFakeNotion starts a fake API server that is closed with the test.
func NewFakeNotion(t testing.TB) *FakeNotion {
	t.Helper()
	f := &FakeNotion{
		PageSize: 2,
		pages:    make(map[string][]FakePage),
		children: make(map[string][]FakeBlock),
		denied:   make(map[string]int),
	}
	r := chi.NewRouter()
	r.Use(f.count)
	r.Get("/v1/blocks/{id}/children", f.handleChildren)
	r.Post("/v1/databases/{id}/query", f.handleQuery)
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL returns the API root to hand to the client.
func (f *FakeNotion) BaseURL() string { return f.Server.URL + "/v1" }

// Requests returns the number of requests served so far.
func (f *FakeNotion) Requests() int64 { return f.requests.Load() }

// SetPages registers the rows of a database.
func (f *FakeNotion) SetPages(databaseID string, pages ...FakePage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[databaseID] = pages
}

// SetChildren registers the children of a block or page.
func (f *FakeNotion) SetChildren(parentID string, blocks ...FakeBlock) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children[parentID] = blocks
}

// Deny makes every request for id fail with status.
func (f *FakeNotion) Deny(id string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied[id] = status
}

func (f *FakeNotion) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("Authorization") == "" || r.Header.Get("Notion-Version") == "" {
			writeAPIError(w, http.StatusUnauthorized, "unauthorized", "missing auth")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeNotion) handleChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	status, denied := f.denied[id]
	blocks, ok := f.children[id]
	f.mu.Unlock()
	if denied {
		writeAPIError(w, status, "restricted_resource", "access denied to "+id)
		return
	}
	if !ok && !f.isPage(id) {
		writeAPIError(w, http.StatusNotFound, "object_not_found", "no block "+id)
		return
	}

	start, _ := strconv.Atoi(r.URL.Query().Get("start_cursor"))
	size := f.pageSize(r.URL.Query().Get("page_size"))
	results := make([]map[string]any, 0, size)
	end := min(start+size, len(blocks))
	for _, b := range blocks[start:end] {
		results = append(results, blockJSON(b))
	}
	writeList(w, results, end, len(blocks))
}

func (f *FakeNotion) handleQuery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	status, denied := f.denied[id]
	pages, ok := f.pages[id]
	f.mu.Unlock()
	if denied {
		writeAPIError(w, status, "restricted_resource", "access denied to "+id)
		return
	}
	if !ok {
		writeAPIError(w, http.StatusNotFound, "object_not_found", "no database "+id)
		return
	}

	var req struct {
		PageSize    int    `json:"page_size"`
		StartCursor string `json:"start_cursor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	start, _ := strconv.Atoi(req.StartCursor)
	size := f.pageSize(strconv.Itoa(req.PageSize))
	end := min(start+size, len(pages))
	results := make([]map[string]any, 0, size)
	for _, p := range pages[start:end] {
		results = append(results, pageJSON(p))
	}
	writeList(w, results, end, len(pages))
}

func (f *FakeNotion) isPage(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pages := range f.pages {
		for _, p := range pages {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}

// pageSize serves the smaller of the requested size and the fake's own limit.
func (f *FakeNotion) pageSize(requested string) int {
	size := f.PageSize
	if n, err := strconv.Atoi(requested); err == nil && n > 0 && (size <= 0 || n < size) {
		size = n
	}
	if size <= 0 {
		size = 100
	}
	return size
}

func blockJSON(b FakeBlock) map[string]any {
	var payload any
	switch {
	case b.Payload != "":
		payload = json.RawMessage(b.Payload)
	case b.Type == "child_page":
		payload = map[string]any{"title": b.Text}
	default:
		payload = map[string]any{"rich_text": richText(b.Text)}
	}
	return map[string]any{
		"object":       "block",
		"id":           b.ID,
		"type":         b.Type,
		"has_children": b.HasChildren,
		b.Type:         payload,
	}
}

func pageJSON(p FakePage) map[string]any {
	var props any
	if p.Properties != "" {
		props = json.RawMessage(p.Properties)
	} else {
		props = map[string]any{
			"Name": map[string]any{"type": "title", "title": richText(p.Title)},
		}
	}
	created := p.Created
	if created == "" {
		created = "2024-01-01T00:00:00.000Z"
	}
	return map[string]any{
		"object":       "page",
		"id":           p.ID,
		"created_time": created,
		"properties":   props,
	}
}

func richText(text string) []map[string]any {
	if text == "" {
		return []map[string]any{}
	}
	return []map[string]any{{"type": "text", "plain_text": text}}
}

func writeList(w http.ResponseWriter, results []map[string]any, end, total int) {
	resp := map[string]any{
		"object":      "list",
		"results":     results,
		"has_more":    end < total,
		"next_cursor": nil,
	}
	if end < total {
		resp["next_cursor"] = strconv.Itoa(end)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeAPIError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"object": "error", "status": status, "code": code, "message": msg})
}
