package ui

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiclinic/clinic-cli/internal/apiclient"
	"github.com/psiclinic/clinic-cli/internal/config"
	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/internal/querycache"
	"github.com/psiclinic/clinic-cli/pkg/httputil"
)

var testUICfg = config.UIConfig{
	WidthBreakpoint: 120,
	PerPageWide:     10,
	PerPageNarrow:   5,
	SearchDebounce:  20 * time.Millisecond,
}

// listServer records the query of each /patients call and serves a
// fixed page of patients.
func listServer(t *testing.T, patients []model.Patient) (*httptest.Server, *atomic.Value, *atomic.Int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var lastQuery atomic.Value
	var calls atomic.Int32
	r := gin.New()
	r.GET("/patients", func(c *gin.Context) {
		calls.Add(1)
		lastQuery.Store(c.Request.URL.Query())
		httputil.RespondWithSuccess(c, model.Page[model.Patient]{
			Items:   patients,
			Total:   len(patients),
			PerPage: 10,
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &lastQuery, &calls
}

func newTestView(t *testing.T, srv *httptest.Server, width int) *PatientListView {
	t.Helper()
	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, nil, nil)
	cache := querycache.New(time.Minute, time.Minute, nil)
	return NewPatientListView(client.Patients(), cache, testUICfg, width)
}

func TestPerPageAdaptsToWidth(t *testing.T) {
	v := NewPatientListView(nil, nil, testUICfg, 160)
	assert.Equal(t, 10, v.PerPage())

	v = NewPatientListView(nil, nil, testUICfg, 80)
	assert.Equal(t, 5, v.PerPage())

	// Exactly at the breakpoint counts as wide.
	v = NewPatientListView(nil, nil, testUICfg, 120)
	assert.Equal(t, 10, v.PerPage())
}

func TestResizeAcrossBreakpointResetsPage(t *testing.T) {
	v := NewPatientListView(nil, nil, testUICfg, 160)
	v.SetPage(3)

	v.Resize(80)

	assert.Equal(t, 5, v.PerPage())
	assert.Equal(t, "1", v.Query().Get("page"))
}

func TestResizeOnSameSideKeepsPage(t *testing.T) {
	v := NewPatientListView(nil, nil, testUICfg, 160)
	v.SetPage(3)

	v.Resize(140)

	assert.Equal(t, 10, v.PerPage())
	assert.Equal(t, "3", v.Query().Get("page"))
}

func TestSearchDebounceClassifiesCPF(t *testing.T) {
	srv, lastQuery, calls := listServer(t, nil)
	v := newTestView(t, srv, 160)
	v.SetPage(4)

	done := make(chan struct{})
	v.Search("123", func() {
		_, _ = v.Fetch(context.Background())
		close(done)
	})

	// Nothing fires until the debounce interval has elapsed.
	assert.Equal(t, int32(0), calls.Load())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced search never fired")
	}

	q := lastQuery.Load().(url.Values)
	assert.Equal(t, "123", q.Get("cpf"))
	assert.Empty(t, q.Get("name"))
	assert.Equal(t, "0", q.Get("pageIndex"))
	assert.Equal(t, "1", v.Query().Get("page"))
}

func TestSearchNameClassification(t *testing.T) {
	srv, lastQuery, _ := listServer(t, nil)
	v := newTestView(t, srv, 160)

	v.SearchNow("Maria")
	_, err := v.Fetch(context.Background())
	require.NoError(t, err)

	q := lastQuery.Load().(url.Values)
	assert.Equal(t, "Maria", q.Get("name"))
	assert.Empty(t, q.Get("cpf"))
}

func TestSearchDebounceCoalescesKeystrokes(t *testing.T) {
	v := NewPatientListView(nil, querycache.New(time.Minute, time.Minute, nil), testUICfg, 160)

	var fired atomic.Int32
	for _, text := range []string{"M", "Ma", "Mar", "Maria"} {
		v.Search(text, func() { fired.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, "Maria", v.Query().Get("filter"))
}

func TestFetchUsesCache(t *testing.T) {
	srv, _, calls := listServer(t, []model.Patient{{Name: "Maria Silva"}})
	v := newTestView(t, srv, 160)

	_, err := v.Fetch(context.Background())
	require.NoError(t, err)
	_, err = v.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestRenderLoadingSkeletonRowCount(t *testing.T) {
	v := NewPatientListView(nil, nil, testUICfg, 80)

	var buf bytes.Buffer
	v.RenderLoading(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Header plus one skeleton row per visible slot.
	assert.Len(t, lines, 1+v.PerPage())
}

func TestRenderTable(t *testing.T) {
	srv, _, _ := listServer(t, []model.Patient{
		{Name: "Maria Silva", CPF: "52998224725", Phone: "11987654321", Active: true},
	})
	v := newTestView(t, srv, 160)

	var buf bytes.Buffer
	require.NoError(t, v.Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "Maria Silva")
	assert.Contains(t, out, "529.982.247-25")
	assert.Contains(t, out, "(11) 98765-4321")
	assert.Contains(t, out, "page 1 of 1")
}

func TestRenderErrorLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	v := newTestView(t, srv, 160)

	var buf bytes.Buffer
	err := v.Render(context.Background(), &buf)
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "failed to load patients")
}
