package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nabshq/nabs/pkg/graph"
)

func testRouter() http.Handler {
	return newRouter(testWorkspace(), log.New(io.Discard))
}

func TestHandleGraph(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var g graph.Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(g.Nodes) != 4 || len(g.Edges) != 2 {
		t.Errorf("graph = %d nodes %d edges, want 4 and 2", len(g.Nodes), len(g.Edges))
	}
}

func TestHandleRDeps(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       []string
	}{
		{
			name:       "CoreAffectsDependents",
			body:       `{"targets": ["packages/core"]}`,
			wantStatus: http.StatusOK,
			want:       []string{"packages/app", "packages/core", "packages/tool"},
		},
		{
			name:       "LeafAffectsOnlyItself",
			body:       `{"targets": ["packages/docs"]}`,
			wantStatus: http.StatusOK,
			want:       []string{"packages/docs"},
		},
		{
			name:       "EmptyTargets",
			body:       `{"targets": []}`,
			wantStatus: http.StatusOK,
			want:       []string{},
		},
		{
			name:       "UnknownTarget",
			body:       `{"targets": ["packages/nope"]}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "MalformedBody",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/rdeps", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			testRouter().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp rdepsResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(resp.Targets) != len(tt.want) {
				t.Fatalf("targets = %v, want %v", resp.Targets, tt.want)
			}
			for i := range tt.want {
				if resp.Targets[i] != tt.want[i] {
					t.Errorf("targets = %v, want %v", resp.Targets, tt.want)
					break
				}
			}
		})
	}
}
