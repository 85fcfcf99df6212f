package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"huct/internal/catalog"
	"huct/internal/htb"
	"huct/internal/metrics"
	"huct/internal/report"
)

const orgID = 7

// scenario is a small organization: three active machines, two members.
// Member 100 solved machine 1; member 200 only solved an item outside the
// catalog.
func scenario() map[string]string {
	return map[string]string{
		"/fortresses":                            `{"data":{"x":{"id":1,"name":"Jet"}}}`,
		"/machine/paginated?page=1":              `{"data":[{"id":1,"name":"Alpha","difficultyText":"Easy"},{"id":2,"name":"Bravo","difficultyText":"Hard"},{"id":3,"name":"Charlie","difficultyText":"Medium"}],"meta":{"current_page":1,"last_page":1}}`,
		"/machine/list/retired/paginated?page=1": `{"data":[],"meta":{"current_page":1,"last_page":1}}`,
		"/challenge/list":                        `{"challenges":[]}`,
		"/challenge/list/retired":                `{"challenges":[]}`,
		"/university/members/7":                  `[{"id":100,"name":"alice"},{"id":200,"name":"bob"}]`,
		"/user/profile/activity/100":             `{"profile":{"activity":[{"object_type":"machine","id":1}]}}`,
		"/user/profile/activity/200":             `{"profile":{"activity":[{"object_type":"machine","id":99}]}}`,
	}
}

func serve(t *testing.T, routes map[string]string) *htb.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[strings.TrimPrefix(r.URL.RequestURI(), "/api/v4")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := htb.DefaultClientConfig("token")
	cfg.BaseURL = srv.URL + "/api/v4"
	return htb.NewClient(cfg,
		htb.WithHTTPClient(srv.Client()),
		htb.WithSleep(func(context.Context, time.Duration) error { return nil }))
}

func TestRun_TwoMembers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := metrics.New()
	tr := New(serve(t, scenario()), zap.New(core), m, 0)

	reg, err := tr.Run(context.Background(), orgID)
	require.NoError(t, err)

	r := report.Build(reg)
	got := make([]int, 0, len(r.Machines))
	for _, it := range r.Machines {
		got = append(got, it.ID)
	}
	assert.Equal(t, []int{3, 2}, got)

	alpha, ok := reg.Lookup(catalog.KindMachine, 1)
	require.True(t, ok)
	assert.Equal(t, "alice", alpha.FlaggedBy[0].Name)
	assert.Len(t, reg.Members()[1].Owned, 0)

	for _, msg := range []string{"1 fortresses fetched.", "3 machines fetched.", "0 challenges fetched.", "2 members fetched."} {
		assert.Equal(t, 1, logs.FilterMessage(msg).Len(), msg)
	}
	assert.Equal(t, 2, logs.FilterMessage("Fetching activity").Len())

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CatalogItems.WithLabelValues("Machine")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnflaggedItems.WithLabelValues("Machine")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnflaggedItems.WithLabelValues("Fortress")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Members))
}

func TestRun_UnknownObjectTypeAborts(t *testing.T) {
	routes := scenario()
	routes["/user/profile/activity/200"] = `{"profile":{"activity":[{"object_type":"unknown_kind","id":1}]}}`
	tr := New(serve(t, routes), nil, nil, 0)

	reg, err := tr.Run(context.Background(), orgID)
	assert.ErrorIs(t, err, htb.ErrUnknownObjectType)
	assert.Nil(t, reg)
	assert.Contains(t, err.Error(), "bob")
}

func TestRun_FetchErrorAborts(t *testing.T) {
	routes := scenario()
	routes["/fortresses"] = `not json`
	tr := New(serve(t, routes), nil, nil, 0)

	reg, err := tr.Run(context.Background(), orgID)
	assert.ErrorIs(t, err, htb.ErrMalformedResponse)
	assert.Nil(t, reg)
	assert.Contains(t, err.Error(), "fetching fortresses")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := New(serve(t, scenario()), nil, nil, 0)

	_, err := tr.Run(ctx, orgID)
	assert.ErrorIs(t, err, context.Canceled)
}
