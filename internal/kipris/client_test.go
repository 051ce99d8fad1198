package kipris

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	testStart = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
)

// pageXML renders a page with n items, the first undated of them without openDate.
func pageXML(page, n, undated int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><response><header><resultCode>00</resultCode></header><body><items>`)
	for i := range n {
		open := "20250101"
		if i < undated {
			open = ""
		}
		fmt.Fprintf(&b, `<patentUtilityInfo><applicationNumber>10-%d-%03d</applicationNumber>`+
			`<inventionTitle>HBM 적층 구조</inventionTitle><applicantName>삼성전자주식회사</applicantName>`+
			`<openDate>%s</openDate><applicationDate>20230101</applicationDate><ipcNumber>H01L25/065</ipcNumber>`+
			`<registerStatus>공개</registerStatus><abstractContent> TSV 기반 </abstractContent></patentUtilityInfo>`, page, i, open)
	}
	fmt.Fprintf(&b, `</items><totalCount>%d</totalCount></body></response>`, 1000)
	return b.String()
}

// newTestClient returns a client against srv with no delays.
func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.URL),
		WithPageDelay(0),
		WithRetry(1, time.Millisecond, 2*time.Millisecond),
		WithLogger(zaptest.NewLogger(t)),
	}
	c, err := NewClient("test-key", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSearchPatentsSendsQuery(t *testing.T) {
	var seen atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Add(1)
		q := r.URL.Query()
		assert.Equal(t, SearchPath, r.URL.Path)
		assert.Equal(t, "삼성전자", q.Get("word"))
		assert.Equal(t, "test-key", q.Get("ServiceKey"))
		assert.Equal(t, "100", q.Get("numOfRows"))
		assert.Equal(t, "1", q.Get("pageNo"))
		assert.Equal(t, "Y", q.Get("patent"))
		assert.Equal(t, "N", q.Get("utility"))
		assert.Equal(t, "20240615", q.Get("openStartDate"))
		assert.Equal(t, "20250615", q.Get("openEndDate"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(pageXML(1, 3, 0)))
	}))
	defer srv.Close()

	patents, err := newTestClient(t, srv).SearchPatents(context.Background(), "삼성전자", testStart, testEnd, 5)
	require.NoError(t, err)
	require.Len(t, patents, 3)
	assert.Equal(t, int32(1), seen.Load())

	p := patents[0]
	assert.Equal(t, "10-1-000", p.ApplicationNumber)
	assert.Equal(t, "HBM 적층 구조", p.InventionTitle)
	assert.Equal(t, "20250101", p.OpenDate)
	assert.Equal(t, "H01L25/065", p.IPCNumber)
	assert.Equal(t, "TSV 기반", p.Abstract)
}

func TestSearchPatentsPagination(t *testing.T) {
	tests := []struct {
		name      string
		sizes     map[int]int // page -> items, missing pages are full
		maxPages  int
		wantCalls int32
		wantLen   int
	}{
		{"short page stops", map[int]int{3: 30}, 5, 3, 230},
		{"empty page stops", map[int]int{2: 0}, 5, 2, 100},
		{"hard cap", nil, 5, 5, 500},
		{"cap above five is clamped", nil, 9, 5, 500},
		{"smaller cap", nil, 2, 2, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				page, _ := strconv.Atoi(r.URL.Query().Get("pageNo"))
				n, ok := tt.sizes[page]
				if !ok {
					n = PageSize
				}
				_, _ = w.Write([]byte(pageXML(page, n, 0)))
			}))
			defer srv.Close()

			patents, err := newTestClient(t, srv).SearchPatents(context.Background(), "SK하이닉스", testStart, testEnd, tt.maxPages)
			require.NoError(t, err)
			assert.Len(t, patents, tt.wantLen)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestSearchPatentsDropsUndatedButKeepsPaging(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := int(calls.Add(1))
		if page == 1 {
			_, _ = w.Write([]byte(pageXML(page, PageSize, 10)))
			return
		}
		_, _ = w.Write([]byte(pageXML(page, 5, 0)))
	}))
	defer srv.Close()

	patents, err := newTestClient(t, srv).SearchPatents(context.Background(), "q", testStart, testEnd, 5)
	require.NoError(t, err)
	assert.Len(t, patents, 95)
	assert.Equal(t, int32(2), calls.Load())
	for _, p := range patents {
		assert.NotEmpty(t, p.OpenDate)
	}
}

func TestSearchPatentsFirstPageError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	patents, err := newTestClient(t, srv).SearchPatents(context.Background(), "q", testStart, testEnd, 5)
	assert.Nil(t, patents)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.True(t, apiErr.IsServerError())
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Equal(t, int32(2), calls.Load(), "one retry expected")
}

func TestSearchPatentsClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SearchPatents(context.Background(), "q", testStart, testEnd, 5)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "bad key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchPatentsRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(pageXML(1, 2, 0)))
	}))
	defer srv.Close()

	patents, err := newTestClient(t, srv).SearchPatents(context.Background(), "q", testStart, testEnd, 5)
	require.NoError(t, err)
	assert.Len(t, patents, 2)
}

func TestSearchPatentsLaterPageErrorKeepsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageNo") == "3" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(pageXML(1, PageSize, 0)))
	}))
	defer srv.Close()

	patents, err := newTestClient(t, srv).SearchPatents(context.Background(), "q", testStart, testEnd, 5)
	require.NoError(t, err)
	assert.Len(t, patents, 200)
}

func TestSearchPatentsMalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<response><body>"))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SearchPatents(context.Background(), "q", testStart, testEnd, 5)
	assert.Error(t, err)
}

func TestSearchPatentsHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(pageXML(1, PageSize, 0)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithPageDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	patents, err := c.SearchPatents(ctx, "q", testStart, testEnd, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, patents, PageSize)
}

func TestCalculateBackoffIsBounded(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	for attempt := 1; attempt <= 5; attempt++ {
		d := c.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 375*time.Millisecond)
	}
}
