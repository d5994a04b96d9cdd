package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/document"
)

func newTestServer() *server {
	return &server{
		doc:    document.New(document.Options{}),
		logger: log.New(io.Discard),
	}
}

// apiRequest runs one request through the full router, so middleware and
// URL params behave as they do in production.
func apiRequest(t *testing.T, s *server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apiError
	decodeResponse(t, rec, &body)
	return body.Error.Code
}

func addNodeViaAPI(t *testing.T, s *server, kind string, x, y float64) string {
	t.Helper()
	rec := apiRequest(t, s, http.MethodPost, "/api/nodes", map[string]any{
		"kind": kind, "x": x, "y": y,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/nodes status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decodeResponse(t, rec, &resp)
	if resp.ID == "" {
		t.Fatal("POST /api/nodes returned an empty id")
	}
	return resp.ID
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	rec := apiRequest(t, s, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var resp map[string]string
	decodeResponse(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}

func TestGetChart(t *testing.T) {
	s := newTestServer()
	addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodGet, "/api/chart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var env document.Envelope
	decodeResponse(t, rec, &env)
	if env.Meta.AppName != document.AppName {
		t.Errorf("meta.appName = %q, want %q", env.Meta.AppName, document.AppName)
	}
	if env.Meta.SchemaVersion < 1 {
		t.Errorf("meta.schemaVersion = %d, want >= 1", env.Meta.SchemaVersion)
	}
	if len(env.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(env.Nodes))
	}
}

func TestReplaceChartRequiresConfirm(t *testing.T) {
	s := newTestServer()

	rec := apiRequest(t, s, http.MethodPut, "/api/chart", map[string]any{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "CONFIRM_REQUIRED" {
		t.Errorf("error code = %q, want CONFIRM_REQUIRED", code)
	}
}

func TestReplaceChart(t *testing.T) {
	s := newTestServer()
	addNodeViaAPI(t, s, "person", 100, 100)

	// Build the replacement from a second document so the payload is a
	// real envelope.
	src := document.New(document.Options{})
	src.AddNode(chart.KindPerson, chart.Position{X: 10, Y: 20})
	src.AddNode(chart.KindSection, chart.Position{X: 300, Y: 20})

	rec := apiRequest(t, s, http.MethodPut, "/api/chart?confirm=true", src.Serialize())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var env document.Envelope
	decodeResponse(t, rec, &env)
	if len(env.Nodes) != 2 {
		t.Errorf("nodes after replace = %d, want 2", len(env.Nodes))
	}
	if len(s.doc.Nodes()) != 2 {
		t.Errorf("document nodes = %d, want 2", len(s.doc.Nodes()))
	}
}

func TestReplaceChartRejectsMalformed(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/api/chart?confirm=true",
		bytes.NewReader([]byte(`{"nodes": {}, "connections": []}`)))
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "IMPORT_FAILED" {
		t.Errorf("error code = %q, want IMPORT_FAILED", code)
	}
}

func TestAddNodeEndpoint(t *testing.T) {
	s := newTestServer()

	id := addNodeViaAPI(t, s, "section", 150, 80)
	n, ok := s.doc.Node(id)
	if !ok {
		t.Fatalf("node %s missing from document", id)
	}
	if n.Kind != chart.KindSection {
		t.Errorf("kind = %v, want section", n.Kind)
	}
	if n.X != 150 || n.Y != 80 {
		t.Errorf("position = (%v, %v), want (150, 80)", n.X, n.Y)
	}
}

func TestAddNodeBadBody(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/nodes", bytes.NewReader([]byte(`{`)))
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", code)
	}
}

func TestPatchNodeEndpoint(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodPatch, "/api/nodes/"+id, map[string]any{"name": "Ada"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]bool
	decodeResponse(t, rec, &resp)
	if !resp["updated"] {
		t.Error("updated = false, want true")
	}

	n, _ := s.doc.Node(id)
	if n.Person == nil || n.Person.Name != "Ada" {
		t.Errorf("name not applied: %+v", n.Person)
	}

	// An empty patch is a valid request that changes nothing.
	rec = apiRequest(t, s, http.MethodPatch, "/api/nodes/"+id, map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("empty patch status = %d, want 200", rec.Code)
	}
	decodeResponse(t, rec, &resp)
	if resp["updated"] {
		t.Error("empty patch reported updated = true")
	}
}

func TestPatchNodeNotFound(t *testing.T) {
	s := newTestServer()

	rec := apiRequest(t, s, http.MethodPatch, "/api/nodes/missing", map[string]any{"name": "Ada"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "NODE_NOT_FOUND" {
		t.Errorf("error code = %q, want NODE_NOT_FOUND", code)
	}
}

func TestRemoveNodeEndpoint(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodDelete, "/api/nodes/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = apiRequest(t, s, http.MethodDelete, "/api/nodes/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestMoveNodeEndpoint(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodPost, "/api/nodes/"+id+"/move", map[string]any{
		"x": 250.0, "y": 175.0,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	n, _ := s.doc.Node(id)
	if n.X != 250 || n.Y != 175 {
		t.Errorf("position = (%v, %v), want (250, 175)", n.X, n.Y)
	}
}

func TestDragGesture(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	for _, x := range []float64{120, 160, 200} {
		rec := apiRequest(t, s, http.MethodPost, "/api/nodes/"+id+"/move", map[string]any{
			"x": x, "y": 100.0, "gesture": "drag",
		})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("drag step status = %d, want 204", rec.Code)
		}
	}

	rec := apiRequest(t, s, http.MethodPost, "/api/drag/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("drag end status = %d, want 200", rec.Code)
	}
	var resp map[string]bool
	decodeResponse(t, rec, &resp)
	if !resp["committed"] {
		t.Error("committed = false, want true")
	}

	n, _ := s.doc.Node(id)
	if n.X != 200 {
		t.Errorf("x after drag = %v, want 200", n.X)
	}
}

func TestEndDragWithoutDrag(t *testing.T) {
	s := newTestServer()

	rec := apiRequest(t, s, http.MethodPost, "/api/drag/end", nil)
	var resp map[string]bool
	decodeResponse(t, rec, &resp)
	if resp["committed"] {
		t.Error("committed = true with no drag in flight")
	}
}

func TestConnectEndpoint(t *testing.T) {
	s := newTestServer()
	n1 := addNodeViaAPI(t, s, "person", 100, 100)
	n2 := addNodeViaAPI(t, s, "person", 100, 300)

	rec := apiRequest(t, s, http.MethodPost, "/api/connections", map[string]any{
		"source": n1, "target": n2, "sourceAnchor": "bottom", "targetAnchor": "top",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decodeResponse(t, rec, &resp)
	if resp.ID == "" {
		t.Fatal("empty connection id")
	}
	if len(s.doc.Connections()) != 1 {
		t.Errorf("connections = %d, want 1", len(s.doc.Connections()))
	}
}

func TestConnectMissingNode(t *testing.T) {
	s := newTestServer()
	n1 := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodPost, "/api/connections", map[string]any{
		"source": n1, "target": "missing", "sourceAnchor": "bottom", "targetAnchor": "top",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "NODE_NOT_FOUND" {
		t.Errorf("error code = %q, want NODE_NOT_FOUND", code)
	}
}

func TestConnectInvalidAnchor(t *testing.T) {
	s := newTestServer()
	n1 := addNodeViaAPI(t, s, "person", 100, 100)
	n2 := addNodeViaAPI(t, s, "person", 100, 300)

	// Connections never originate at a top anchor.
	rec := apiRequest(t, s, http.MethodPost, "/api/connections", map[string]any{
		"source": n1, "target": n2, "sourceAnchor": "top", "targetAnchor": "top",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_ANCHOR" {
		t.Errorf("error code = %q, want INVALID_ANCHOR", code)
	}
}

func TestPatchConnectionEndpoint(t *testing.T) {
	s := newTestServer()
	n1 := addNodeViaAPI(t, s, "person", 100, 100)
	n2 := addNodeViaAPI(t, s, "person", 100, 300)
	rec := apiRequest(t, s, http.MethodPost, "/api/connections", map[string]any{
		"source": n1, "target": n2, "sourceAnchor": "bottom", "targetAnchor": "top",
	})
	var created struct {
		ID string `json:"id"`
	}
	decodeResponse(t, rec, &created)

	rec = apiRequest(t, s, http.MethodPatch, "/api/connections/"+created.ID, map[string]any{
		"dashed": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]bool
	decodeResponse(t, rec, &resp)
	if !resp["updated"] {
		t.Error("updated = false, want true")
	}

	rec = apiRequest(t, s, http.MethodPatch, "/api/connections/missing", map[string]any{
		"dashed": true,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown connection status = %d, want 404", rec.Code)
	}
}

func TestRemoveConnectionEndpoint(t *testing.T) {
	s := newTestServer()
	n1 := addNodeViaAPI(t, s, "person", 100, 100)
	n2 := addNodeViaAPI(t, s, "person", 100, 300)
	rec := apiRequest(t, s, http.MethodPost, "/api/connections", map[string]any{
		"source": n1, "target": n2, "sourceAnchor": "bottom", "targetAnchor": "top",
	})
	var created struct {
		ID string `json:"id"`
	}
	decodeResponse(t, rec, &created)

	rec = apiRequest(t, s, http.MethodDelete, "/api/connections/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	rec = apiRequest(t, s, http.MethodDelete, "/api/connections/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestUndoRedoEndpoints(t *testing.T) {
	s := newTestServer()

	rec := apiRequest(t, s, http.MethodPost, "/api/undo", nil)
	var resp map[string]bool
	decodeResponse(t, rec, &resp)
	if resp["applied"] {
		t.Error("undo on fresh document applied = true")
	}

	addNodeViaAPI(t, s, "person", 100, 100)

	rec = apiRequest(t, s, http.MethodGet, "/api/history", nil)
	decodeResponse(t, rec, &resp)
	if !resp["canUndo"] || resp["canRedo"] {
		t.Errorf("history = %v, want canUndo only", resp)
	}

	rec = apiRequest(t, s, http.MethodPost, "/api/undo", nil)
	decodeResponse(t, rec, &resp)
	if !resp["applied"] {
		t.Error("undo applied = false, want true")
	}
	if len(s.doc.Nodes()) != 0 {
		t.Errorf("nodes after undo = %d, want 0", len(s.doc.Nodes()))
	}

	rec = apiRequest(t, s, http.MethodGet, "/api/history", nil)
	decodeResponse(t, rec, &resp)
	if resp["canUndo"] || !resp["canRedo"] {
		t.Errorf("history = %v, want canRedo only", resp)
	}

	rec = apiRequest(t, s, http.MethodPost, "/api/redo", nil)
	decodeResponse(t, rec, &resp)
	if !resp["applied"] {
		t.Error("redo applied = false, want true")
	}
	if len(s.doc.Nodes()) != 1 {
		t.Errorf("nodes after redo = %d, want 1", len(s.doc.Nodes()))
	}
}

func TestLayoutEndpoint(t *testing.T) {
	s := newTestServer()
	n1 := addNodeViaAPI(t, s, "person", 500, 500)
	n2 := addNodeViaAPI(t, s, "person", 50, 50)
	apiRequest(t, s, http.MethodPost, "/api/connections", map[string]any{
		"source": n1, "target": n2, "sourceAnchor": "bottom", "targetAnchor": "top",
	})

	rec := apiRequest(t, s, http.MethodPost, "/api/layout", nil)
	var resp map[string]bool
	decodeResponse(t, rec, &resp)
	if !resp["changed"] {
		t.Error("layout changed = false, want true")
	}

	// A second run finds everything already settled.
	rec = apiRequest(t, s, http.MethodPost, "/api/layout", nil)
	decodeResponse(t, rec, &resp)
	if resp["changed"] {
		t.Error("settled layout changed = true")
	}
}

func TestSelectionEndpoint(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodPut, "/api/selection", map[string]any{"ids": []string{id}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string][]string
	decodeResponse(t, rec, &resp)
	if len(resp["selected"]) != 1 || resp["selected"][0] != id {
		t.Errorf("selected = %v, want [%s]", resp["selected"], id)
	}

	rec = apiRequest(t, s, http.MethodPut, "/api/selection", map[string]any{"ids": []string{}})
	decodeResponse(t, rec, &resp)
	if len(resp["selected"]) != 0 {
		t.Errorf("selected after clear = %v, want empty", resp["selected"])
	}
}

func TestClipboardEndpoints(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodPost, "/api/clipboard/copy", nil)
	var copied map[string]int
	decodeResponse(t, rec, &copied)
	if copied["copied"] != 0 {
		t.Errorf("copy with empty selection = %d, want 0", copied["copied"])
	}

	rec = apiRequest(t, s, http.MethodPost, "/api/clipboard/paste", nil)
	var pasted map[string][]string
	decodeResponse(t, rec, &pasted)
	if len(pasted["ids"]) != 0 {
		t.Errorf("paste with empty clipboard = %v, want []", pasted["ids"])
	}

	apiRequest(t, s, http.MethodPut, "/api/selection", map[string]any{"ids": []string{id}})
	rec = apiRequest(t, s, http.MethodPost, "/api/clipboard/copy", nil)
	decodeResponse(t, rec, &copied)
	if copied["copied"] != 1 {
		t.Errorf("copied = %d, want 1", copied["copied"])
	}

	rec = apiRequest(t, s, http.MethodPost, "/api/clipboard/paste", nil)
	decodeResponse(t, rec, &pasted)
	if len(pasted["ids"]) != 1 {
		t.Fatalf("pasted ids = %v, want one", pasted["ids"])
	}
	if pasted["ids"][0] == id {
		t.Error("paste reused the source id")
	}
	if len(s.doc.Nodes()) != 2 {
		t.Errorf("nodes after paste = %d, want 2", len(s.doc.Nodes()))
	}
}

func TestPresetEndpoints(t *testing.T) {
	s := newTestServer()
	id := addNodeViaAPI(t, s, "person", 100, 100)

	rec := apiRequest(t, s, http.MethodPost, "/api/presets", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create with empty selection status = %d, want 400", rec.Code)
	}

	apiRequest(t, s, http.MethodPut, "/api/selection", map[string]any{"ids": []string{id}})
	rec = apiRequest(t, s, http.MethodPost, "/api/presets", map[string]any{"name": "Family"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeResponse(t, rec, &created)

	rec = apiRequest(t, s, http.MethodGet, "/api/presets", nil)
	var list struct {
		Presets []*chart.Preset `json:"presets"`
	}
	decodeResponse(t, rec, &list)
	if len(list.Presets) != 1 {
		t.Fatalf("presets = %d, want 1", len(list.Presets))
	}
	if list.Presets[0].Name != "Family" {
		t.Errorf("preset name = %q, want Family", list.Presets[0].Name)
	}

	rec = apiRequest(t, s, http.MethodPost, "/api/presets/missing/apply", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("apply missing status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "PRESET_NOT_FOUND" {
		t.Errorf("error code = %q, want PRESET_NOT_FOUND", code)
	}

	rec = apiRequest(t, s, http.MethodPost, "/api/presets/"+created.ID+"/apply", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d, want 200", rec.Code)
	}
	var applied map[string][]string
	decodeResponse(t, rec, &applied)
	if len(applied["ids"]) != 1 {
		t.Errorf("applied ids = %v, want one", applied["ids"])
	}
	if len(s.doc.Nodes()) != 2 {
		t.Errorf("nodes after apply = %d, want 2", len(s.doc.Nodes()))
	}

	rec = apiRequest(t, s, http.MethodPatch, "/api/presets/"+created.ID, map[string]any{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank rename status = %d, want 400", rec.Code)
	}

	rec = apiRequest(t, s, http.MethodPatch, "/api/presets/"+created.ID, map[string]any{"name": "Ancestors"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("rename status = %d, want 204", rec.Code)
	}

	rec = apiRequest(t, s, http.MethodDelete, "/api/presets/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = apiRequest(t, s, http.MethodDelete, "/api/presets/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestErrorBodyShape(t *testing.T) {
	s := newTestServer()

	rec := apiRequest(t, s, http.MethodDelete, "/api/nodes/missing", nil)
	var raw map[string]map[string]string
	decodeResponse(t, rec, &raw)

	inner, ok := raw["error"]
	if !ok {
		t.Fatalf("body %s lacks error key", rec.Body.String())
	}
	if inner["code"] == "" || inner["message"] == "" {
		t.Errorf("error body = %v, want code and message", inner)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/api/chart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
