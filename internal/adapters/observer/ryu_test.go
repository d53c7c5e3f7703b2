package observer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRyuObserver_AggregateFlowCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/aggregateflow/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"1": [{"flow_count": 42}]}`))
	}))
	defer srv.Close()

	obs := NewRyuObserver(srv.URL)
	count, err := obs.AggregateFlowCount(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestRyuObserver_MissingDpid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	obs := NewRyuObserver(srv.URL)
	_, err := obs.AggregateFlowCount(context.Background(), "2")
	require.Error(t, err)
}

func TestRyuObserver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	obs := NewRyuObserver(srv.URL)
	_, err := obs.AggregateFlowCount(context.Background(), "1")
	require.Error(t, err)
}
