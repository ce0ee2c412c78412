package lottery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, h http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewFetcher(FetcherConfig{Endpoint: srv.URL, Timeout: 2 * time.Second})
}

func TestFetchReturnsFirstDraw(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"openCode":"1,2,3","zodiac":"Rat,Ox,Tiger","wave":"red,blue,green","openTime":"2024-05-01 21:30:00","expect":"123"},
			{"openCode":"4,5,6","zodiac":"Dog,Pig,Rat","wave":"red,red,red","openTime":"2024-04-30 21:30:00","expect":"122"}
		]`))
	})

	d, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Draw{OpenCode: "1,2,3", Zodiac: "Rat,Ox,Tiger", Wave: "red,blue,green", OpenTime: "2024-05-01 21:30:00", Expect: "123"}, d)
}

func TestFetchIgnoresBadLaterElements(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"openCode":"1,2,3","expect":"123"},{"openCode":{"x":1}},42]`))
	})

	d, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1,2,3", d.OpenCode)
	assert.Equal(t, "123", d.Expect)
}

func TestDecodeResponseBadFirstElement(t *testing.T) {
	_, err := DecodeResponse([]byte(`[{"openCode":{"x":1}},{"openCode":"1,2,3"}]`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFetchFailsSoft(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusBadGateway, body: `oops`, want: ErrBadStatus},
		{name: "not found", status: http.StatusNotFound, body: `[]`, want: ErrBadStatus},
		{name: "malformed", status: http.StatusOK, body: `{"openCode":`, want: ErrMalformed},
		{name: "object instead of list", status: http.StatusOK, body: `{"openCode":"1"}`, want: ErrMalformed},
		{name: "empty list", status: http.StatusOK, body: `[]`, want: ErrNoResult},
		{name: "missing openCode", status: http.StatusOK, body: `[{"zodiac":"Rat","expect":"1"}]`, want: ErrNoResult},
		{name: "blank openCode", status: http.StatusOK, body: `[{"openCode":"  "}]`, want: ErrNoResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := f.Fetch(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewFetcher(FetcherConfig{Endpoint: url, Timeout: time.Second})
	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchTimeout(t *testing.T) {
	block := make(chan struct{})
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	f.client.SetTimeout(50 * time.Millisecond)
	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(FetcherConfig{})
	assert.Equal(t, DefaultEndpoint, f.Endpoint())
	assert.Nil(t, f.limiter)

	limited := NewFetcher(FetcherConfig{RatePerSec: 2})
	assert.NotNil(t, limited.limiter)
}
