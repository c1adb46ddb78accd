package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/data/aggregates"
	"github.com/yungbote/maintenance-planner/internal/data/repos"
	"github.com/yungbote/maintenance-planner/internal/data/repos/testutil"
	httpH "github.com/yungbote/maintenance-planner/internal/http/handlers"
	"github.com/yungbote/maintenance-planner/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	writer := aggregates.NewWriter(aggregates.Deps{DB: db, Log: log})
	clock := func() time.Time { return time.Unix(1_700_000_000, 0) }

	registry := services.NewActionRegistry(writer, log, set.Action)
	items := services.NewPlanItemList(registry, set.PlanItem)
	plans := services.NewPlanService(writer, log, set, items, clock)
	executions := services.NewExecutionService(writer, log, set, clock)
	snapshots := services.NewSnapshotService(writer, log, set, clock)

	return NewRouter(RouterConfig{
		Log:              log,
		HealthHandler:    httpH.NewHealthHandler(db),
		PlanHandler:      httpH.NewPlanHandler(plans, executions),
		ExecutionHandler: httpH.NewExecutionHandler(executions),
		BackupHandler:    httpH.NewBackupHandler(snapshots),
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeID(t *testing.T, w *httptest.ResponseRecorder) uuid.UUID {
	t.Helper()
	var out struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.ID == uuid.Nil {
		t.Fatalf("decode id: err=%v body=%s", err, w.Body.String())
	}
	return out.ID
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthcheck", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthcheck: code=%d body=%q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}
}

func TestPlanAndExecutionFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/plans", map[string]any{"name": "Car", "items": []string{"Oil", "Tyres"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: code=%d body=%s", w.Code, w.Body.String())
	}
	planID := decodeID(t, w)

	w = do(t, r, http.MethodPost, "/api/plans/"+planID.String()+"/executions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start execution: code=%d body=%s", w.Code, w.Body.String())
	}
	execID := decodeID(t, w)

	w = do(t, r, http.MethodPost, "/api/executions/"+execID.String()+"/complete", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("complete with open items: code=%d body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/executions/"+execID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get execution: code=%d", w.Code)
	}
	var detail struct {
		Items []struct {
			ID uuid.UUID `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil || len(detail.Items) != 2 {
		t.Fatalf("execution detail: err=%v body=%s", err, w.Body.String())
	}
	for _, it := range detail.Items {
		w = do(t, r, http.MethodPost, "/api/execution-items/"+it.ID.String(), map[string]bool{"finished": true})
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"finished_at":1700000000`) {
			t.Fatalf("check item: code=%d body=%s", w.Code, w.Body.String())
		}
	}

	w = do(t, r, http.MethodPost, "/api/executions/"+execID.String()+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: code=%d body=%s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodDelete, "/api/executions/"+execID.String(), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("delete completed: code=%d body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodDelete, "/api/plans/"+planID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("soft delete: code=%d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/plans?deleted=deleted", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), planID.String()) {
		t.Fatalf("list deleted: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestBadInputs(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed id", http.MethodGet, "/api/plans/not-a-uuid", nil, http.StatusNotFound},
		{"unknown plan", http.MethodGet, "/api/plans/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown sort", http.MethodGet, "/api/plans?sort=size", nil, http.StatusBadRequest},
		{"unknown filter", http.MethodGet, "/api/plans?deleted=maybe", nil, http.StatusBadRequest},
		{"empty name", http.MethodPost, "/api/plans", map[string]any{"name": "  "}, http.StatusBadRequest},
		{"toggle without flag", http.MethodPost, "/api/execution-items/" + uuid.NewString(), map[string]any{}, http.StatusBadRequest},
		{"unknown execution", http.MethodPost, "/api/executions/" + uuid.NewString() + "/reopen", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Fatalf("code: want=%d got=%d body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestBackupExportImport(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/plans", map[string]any{"name": "House", "items": []string{"Gutters"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: code=%d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/backup/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: code=%d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "maintenance-planner-backup.json") {
		t.Fatalf("Content-Disposition: %q", cd)
	}
	exported := w.Body.Bytes()

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("backup_file", "backup.json")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(exported); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/backup/import", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"plans_restored":1`) {
		t.Fatalf("multipart import: code=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed import: code=%d body=%s", rec.Code, rec.Body.String())
	}
}
