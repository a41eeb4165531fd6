package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gyaneshwarpardhi/nodeflow/internal/api"
	"github.com/gyaneshwarpardhi/nodeflow/internal/editor"
	"github.com/gyaneshwarpardhi/nodeflow/internal/graph"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.New(editor.New(graph.New())))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func insertNode(t *testing.T, srv *httptest.Server, kind string, number *float64) string {
	t.Helper()
	var res struct {
		ID string `json:"id"`
	}
	body := map[string]interface{}{"kind": kind}
	if number != nil {
		body["number"] = *number
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/v1/nodes", body, &res)
	if status != http.StatusCreated {
		t.Fatalf("insert %s: status %d", kind, status)
	}
	return res.ID
}

func f64(v float64) *float64 { return &v }

func edgeBody(from string, fromPort int, to string, toPort int) map[string]interface{} {
	return map[string]interface{}{
		"from_node": from,
		"from_port": fromPort,
		"to_node":   to,
		"to_port":   toPort,
	}
}

func TestSumScenarioOverHTTP(t *testing.T) {
	srv := newServer(t)

	lhs := insertNode(t, srv, "number", f64(3))
	rhs := insertNode(t, srv, "number", f64(4))
	sum := insertNode(t, srv, "sum", nil)
	sink := insertNode(t, srv, "sink", nil)

	for _, e := range []map[string]interface{}{
		edgeBody(lhs, 0, sum, 0),
		edgeBody(rhs, 0, sum, 1),
		edgeBody(sum, 0, sink, 0),
	} {
		if status := doJSON(t, http.MethodPost, srv.URL+"/v1/edges", e, nil); status != http.StatusCreated {
			t.Fatalf("connect: status %d", status)
		}
	}

	var outs struct {
		Outputs []*graph.Value `json:"outputs"`
	}
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/nodes/%s/outputs", srv.URL, sum), nil, &outs)
	if len(outs.Outputs) != 1 || outs.Outputs[0] == nil || outs.Outputs[0].Num != 7 {
		t.Errorf("sum outputs = %+v, want [7]", outs.Outputs)
	}

	var disp struct {
		Value *graph.Value `json:"value"`
	}
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/nodes/%s/display", srv.URL, sink), nil, &disp)
	if disp.Value == nil || disp.Value.Num != 7 {
		t.Errorf("sink display = %+v, want 7", disp.Value)
	}

	// Editing a literal propagates.
	status := doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/nodes/%s/value", srv.URL, lhs),
		map[string]interface{}{"number": 10.0}, nil)
	if status != http.StatusOK {
		t.Fatalf("set value: status %d", status)
	}
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/nodes/%s/display", srv.URL, sink), nil, &disp)
	if disp.Value == nil || disp.Value.Num != 14 {
		t.Errorf("sink display after edit = %+v, want 14", disp.Value)
	}
}

func TestRejectionsMapToStatusCodes(t *testing.T) {
	srv := newServer(t)

	str := insertNode(t, srv, "string", nil)
	sum := insertNode(t, srv, "sum", nil)

	// Type mismatch → 422.
	status := doJSON(t, http.MethodPost, srv.URL+"/v1/edges", edgeBody(str, 0, sum, 0), nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("type mismatch: status %d, want 422", status)
	}

	// Self-cycle → 422.
	status = doJSON(t, http.MethodPost, srv.URL+"/v1/edges", edgeBody(sum, 0, sum, 0), nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("cycle: status %d, want 422", status)
	}

	// Port out of range → 400.
	status = doJSON(t, http.MethodPost, srv.URL+"/v1/edges", edgeBody(str, 5, sum, 0), nil)
	if status != http.StatusBadRequest {
		t.Errorf("port out of range: status %d, want 400", status)
	}

	// Unknown node → 404.
	status = doJSON(t, http.MethodPost, srv.URL+"/v1/edges", edgeBody("ghost", 0, sum, 0), nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown node: status %d, want 404", status)
	}

	// Unknown catalog kind → 400.
	status = doJSON(t, http.MethodPost, srv.URL+"/v1/nodes", map[string]interface{}{"kind": "widget"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("unknown kind: status %d, want 400", status)
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv := newServer(t)

	// Tracker before snapshot → 409.
	if status := doJSON(t, http.MethodGet, srv.URL+"/v1/tasks", nil, nil); status != http.StatusConflict {
		t.Fatalf("tasks before snapshot: status %d, want 409", status)
	}

	a := insertNode(t, srv, "number", f64(1))
	s := insertNode(t, srv, "sum", nil)
	if status := doJSON(t, http.MethodPost, srv.URL+"/v1/edges", edgeBody(a, 0, s, 0), nil); status != http.StatusCreated {
		t.Fatalf("connect: status %d", status)
	}

	var snap struct {
		Ready   []string `json:"ready"`
		Blocked []string `json:"blocked"`
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/v1/tasks/snapshot", nil, &snap); status != http.StatusCreated {
		t.Fatalf("snapshot: status %d", status)
	}
	if len(snap.Ready) != 1 || snap.Ready[0] != a {
		t.Fatalf("snapshot ready = %v, want [%s]", snap.Ready, a)
	}
	if len(snap.Blocked) != 1 || snap.Blocked[0] != s {
		t.Fatalf("snapshot blocked = %v, want [%s]", snap.Blocked, s)
	}

	var done struct {
		NewlyReady []string `json:"newly_ready"`
	}
	status := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/tasks/%s/complete", srv.URL, a), nil, &done)
	if status != http.StatusOK {
		t.Fatalf("complete: status %d", status)
	}
	if len(done.NewlyReady) != 1 || done.NewlyReady[0] != s {
		t.Errorf("newly_ready = %v, want [%s]", done.NewlyReady, s)
	}

	// Double completion → 404.
	status = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/tasks/%s/complete", srv.URL, a), nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("double complete: status %d, want 404", status)
	}
}

func TestTopologyAndDOT(t *testing.T) {
	srv := newServer(t)
	a := insertNode(t, srv, "number", f64(2))
	sink := insertNode(t, srv, "sink", nil)
	if status := doJSON(t, http.MethodPost, srv.URL+"/v1/edges", edgeBody(a, 0, sink, 0), nil); status != http.StatusCreated {
		t.Fatalf("connect: status %d", status)
	}

	var topo struct {
		Nodes []editor.NodeSummary `json:"nodes"`
		Edges []graph.Edge         `json:"edges"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/v1/graph", nil, &topo)
	if len(topo.Nodes) != 2 || len(topo.Edges) != 1 {
		t.Fatalf("topology = %d nodes / %d edges, want 2 / 1", len(topo.Nodes), len(topo.Edges))
	}

	resp, err := http.Get(srv.URL + "/v1/graph/dot")
	if err != nil {
		t.Fatalf("GET dot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("dot export: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("dot content type = %q", ct)
	}
}
