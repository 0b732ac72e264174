package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/clock"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/repository"
	"github.com/alexanderramin/furrow/internal/service"
	"github.com/alexanderramin/furrow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday
var apiNow = time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	handler http.Handler
	orders  repository.OrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	cat := catalog.MustDefault()
	clk := clock.Fixed{At: apiNow}

	batches := repository.NewSQLiteBatchRepo(database)
	orders := repository.NewSQLiteOrderRepo(database)
	uow := testutil.NewTestUoW(database)
	settings := service.DefaultPlanningSettings()
	settings.Capacity = map[domain.Unit]int{domain.UnitTray: 10, domain.UnitPort: 50, domain.UnitBlock: 5}
	planning := service.NewPlanningService(batches, orders, cat, clk, settings)

	srv := New(Deps{
		Planning: planning,
		Batches:  service.NewBatchService(batches, uow, cat, clk, planning, nil),
		Orders:   service.NewOrderService(orders, uow),
		Catalog:  cat,
		DB:       database,
	})
	return &testEnv{handler: srv.Router(), orders: orders}
}

func (e *testEnv) seedOrder(t *testing.T, name string, qty float64) {
	t.Helper()
	o := testutil.NewTestOrder(apiNow.AddDate(0, 0, -2), testutil.WithItem(name, qty))
	require.NoError(t, e.orders.Upsert(context.Background(), o))
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code app.RequestErrorCode) errorBody {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, string(code), body.Code)
	return body
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("database is locked") }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, rec)["ok"])
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	down := New(Deps{DB: failingPinger{}}).Router()
	rec = doRequest(t, down, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "database is locked", body["db"])
}

func TestRecommend(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "Sunflower Shoots", 40)

	rec := doRequest(t, env.handler, http.MethodGet, "/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[recommendDTO](t, rec)

	require.Len(t, body.Needs, 1)
	assert.Equal(t, "sunflower", body.Needs[0].CropID)
	assert.Equal(t, "critical", body.Needs[0].Urgency)
	assert.Equal(t, "tray", body.Needs[0].BatchUnit)
	assert.Empty(t, body.Allocations)
	assert.NotNil(t, body.UnmatchedProducts)
}

func TestRecommend_CapacityImpliesPlan(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "sunflower", 40)

	rec := doRequest(t, env.handler, http.MethodGet, "/recommendations?trays=0", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[recommendDTO](t, rec)

	assert.Empty(t, body.Allocations)
	require.Len(t, body.Blockers, 1)
	assert.Equal(t, "sunflower", body.Blockers[0].CropID)
	assert.Equal(t, "NO_CAPACITY", body.Blockers[0].Code)

	rec = doRequest(t, env.handler, http.MethodGet, "/recommendations?plan=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody[recommendDTO](t, rec)
	require.Len(t, body.Allocations, 1)
	assert.Positive(t, body.Allocations[0].Allocated)
}

func TestRecommend_BadQuery(t *testing.T) {
	env := newTestEnv(t)

	cases := []string{
		"/recommendations?today=06/16/2025",
		"/recommendations?plan=maybe",
		"/recommendations?trays=-1",
		"/recommendations?category=fungi",
	}
	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			rec := doRequest(t, env.handler, http.MethodGet, path, "")
			assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)
		})
	}
}

func TestBatchLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodPost, "/batches",
		`{"variety": "Sunflower Shoots", "quantity": 2, "by": "ana"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	planted := decodeBody[batchDTO](t, rec)
	assert.Equal(t, "sunflower", planted.VarietyID)
	assert.Equal(t, "sown", planted.Stage)
	assert.Equal(t, "2025-06-16", planted.SowDate)
	assert.Equal(t, "2025-06-25", planted.EstimatedHarvestStart)
	assert.Equal(t, "/batches/"+planted.ID, rec.Header().Get("Location"))
	require.Len(t, planted.StageHistory, 1)
	assert.Equal(t, "ana", planted.StageHistory[0].By)

	rec = doRequest(t, env.handler, http.MethodGet, "/batches/"+planted.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[batchViewDTO](t, rec)
	require.NotNil(t, view.Advisory)
	assert.Equal(t, "blackout", view.Advisory.NextStage)

	rec = doRequest(t, env.handler, http.MethodPost, "/batches/"+planted.ID+"/advance", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tr := decodeBody[transitionDTO](t, rec)
	assert.Equal(t, "sown", tr.FromStage)
	assert.Equal(t, "blackout", tr.ToStage)
	assert.Empty(t, tr.EventErr)

	rec = doRequest(t, env.handler, http.MethodPost, "/batches/"+planted.ID+"/harvest", `{"yield": 18.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tr = decodeBody[transitionDTO](t, rec)
	assert.Equal(t, "harvested", tr.ToStage)
	require.NotNil(t, tr.Batch.HarvestYield)
	assert.InDelta(t, 18.5, *tr.Batch.HarvestYield, 1e-9)

	rec = doRequest(t, env.handler, http.MethodPost, "/batches/"+planted.ID+"/advance", "")
	assertError(t, rec, http.StatusConflict, app.ErrInvalidState)

	rec = doRequest(t, env.handler, http.MethodGet, "/batches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[map[string][]batchViewDTO](t, rec)["batches"])

	rec = doRequest(t, env.handler, http.MethodGet, "/batches?all=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[map[string][]batchViewDTO](t, rec)["batches"]
	require.Len(t, all, 1)
	require.NotNil(t, all[0].YieldAccuracy)
	assert.Nil(t, all[0].Advisory)
}

func TestBatchErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodPost, "/batches", `{"variety": "kale", "quantity": 1}`)
	assertError(t, rec, http.StatusBadRequest, app.ErrUnknownVariety)

	rec = doRequest(t, env.handler, http.MethodPost, "/batches", `{"variety": "pea", "qty": 1}`)
	body := assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)
	assert.Contains(t, body.Error, "invalid JSON body")

	rec = doRequest(t, env.handler, http.MethodPost, "/batches", `{"variety": "pea", "quantity": 1, "sow_date": "soon"}`)
	assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)

	rec = doRequest(t, env.handler, http.MethodGet, "/batches/missing", "")
	assertError(t, rec, http.StatusNotFound, app.ErrNotFound)

	rec = doRequest(t, env.handler, http.MethodPost, "/batches/missing/harvest", `{"yield": 1}`)
	assertError(t, rec, http.StatusNotFound, app.ErrNotFound)

	rec = doRequest(t, env.handler, http.MethodGet, "/batches?category=fungi", "")
	assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)
}

func TestPlant_FromRecommendation(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "pea", 36)

	rec := doRequest(t, env.handler, http.MethodPost, "/batches", `{"variety": "pea", "from_recommendation": true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decodeBody[batchDTO](t, rec)
	assert.Equal(t, 1, b.Quantity)
	assert.Equal(t, string(domain.SourceRecommendation), b.Source)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "basil", 8)
	rec := doRequest(t, env.handler, http.MethodPost, "/batches",
		`{"variety": "basil", "quantity": 12, "sow_date": "2025-06-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, env.handler, http.MethodGet, "/pipeline?category=herbs", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pipe := decodeBody[pipelineResponseDTO](t, rec)
	require.Len(t, pipe.Pipelines, 1)
	assert.Equal(t, "basil", pipe.Pipelines[0].CropID)
	assert.Equal(t, 12, pipe.Pipelines[0].CurrentPipeline)
	require.Len(t, pipe.Funnels, 1)
	assert.Equal(t, "herbs", pipe.Funnels[0].Category)

	rec = doRequest(t, env.handler, http.MethodGet, "/board", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b := decodeBody[boardDTO](t, rec)
	assert.Equal(t, "2025-06-16", b.Date)
	require.Len(t, b.Advance, 1)
	assert.Equal(t, "germination", b.Advance[0].NextStage)
	assert.True(t, b.Advance[0].IsOverdue)

	rec = doRequest(t, env.handler, http.MethodGet, "/yield?variety=basil", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cals := decodeBody[map[string][]calibrationDTO](t, rec)["calibrations"]
	require.Len(t, cals, 1)
	assert.Equal(t, "basil", cals[0].VarietyID)
	assert.Zero(t, cals[0].Samples)

	rec = doRequest(t, env.handler, http.MethodGet, "/yield?variety=kale", "")
	assertError(t, rec, http.StatusBadRequest, app.ErrUnknownVariety)
}

const importBody = `[
  {"id": "o-1", "status": "placed", "created_at": "2025-06-14", "items": [{"name": "Radish", "quantity": 14}]},
  {"id": "o-2", "status": "bogus", "created_at": "2025-06-14", "items": []}
]`

func TestOrders(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodPost, "/orders/import", importBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[importResultDTO](t, rec)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Items)
	require.Len(t, res.Rejected, 1)
	assert.Contains(t, res.Rejected[0], "bogus")

	rec = doRequest(t, env.handler, http.MethodPost, "/orders",
		`{"id": "o-3", "customer": "Cafe Verde", "status": "delivered", "created_at": "2025-06-10", "items": [{"name": "pea", "quantity": 9}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decodeBody[orderDTO](t, rec)
	assert.Equal(t, "o-3", o.ID)
	assert.Equal(t, "Cafe Verde", o.Customer)

	rec = doRequest(t, env.handler, http.MethodGet, "/orders?status=placed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	placed := decodeBody[map[string][]orderDTO](t, rec)["orders"]
	require.Len(t, placed, 1)
	assert.Equal(t, "o-1", placed[0].ID)

	rec = doRequest(t, env.handler, http.MethodGet, "/orders?since=2025-06-12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[map[string][]orderDTO](t, rec)["orders"], 1)

	rec = doRequest(t, env.handler, http.MethodGet, "/orders?status=lost", "")
	assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)

	rec = doRequest(t, env.handler, http.MethodPost, "/orders", `{"id": "", "status": "placed", "created_at": "2025-06-10", "items": []}`)
	assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)

	rec = doRequest(t, env.handler, http.MethodPost, "/orders/import", `{"orders": 3}`)
	assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env.handler, http.MethodGet, "/catalog/varieties?category=herbs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	vs := decodeBody[map[string][]varietyDTO](t, rec)["varieties"]
	require.NotEmpty(t, vs)
	for _, v := range vs {
		assert.Equal(t, "herbs", v.Category)
	}

	rec = doRequest(t, env.handler, http.MethodGet, "/catalog/varieties?category=fungi", "")
	assertError(t, rec, http.StatusBadRequest, app.ErrInvalidRequest)

	rec = doRequest(t, env.handler, http.MethodGet, "/catalog/varieties/sunflower/schedule?sow_date=2025-06-16", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sched := decodeBody[scheduleDTO](t, rec)
	assert.Equal(t, "2025-06-15", sched.SoakDate)
	assert.Equal(t, "2025-06-25", sched.HarvestStart)

	rec = doRequest(t, env.handler, http.MethodGet, "/catalog/varieties/kale/schedule", "")
	assertError(t, rec, http.StatusNotFound, app.ErrUnknownVariety)
}

type brokenPlanning struct {
	app.PlanningUseCase
}

func (brokenPlanning) Board(context.Context, app.BoardRequest) (*app.BoardResponse, error) {
	return nil, errors.New("disk full")
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	h := New(Deps{Planning: brokenPlanning{}}).Router()

	rec := doRequest(t, h, http.MethodGet, "/board", "")
	body := assertError(t, rec, http.StatusInternalServerError, app.ErrInternalFailure)
	assert.Equal(t, "internal error", body.Error)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(app.ErrInvalidRequest))
	assert.Equal(t, http.StatusBadRequest, statusFor(app.ErrUnknownVariety))
	assert.Equal(t, http.StatusNotFound, statusFor(app.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(app.ErrInvalidState))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(app.ErrDataIntegrity))
	assert.Equal(t, http.StatusInternalServerError, statusFor(app.ErrInternalFailure))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv := New(Deps{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
