package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "scrape_feed"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestScrapeQuery(t *testing.T) {
	q, err := scrapeQuery(callRequest(map[string]any{
		"url":         "https://x.com/nasa",
		"limit":       float64(12),
		"use_cookies": false,
	}))

	require.NoError(t, err)
	assert.Equal(t, "https://x.com/nasa", q.Get("url"))
	assert.Equal(t, "12", q.Get("limit"))
	assert.Equal(t, "false", q.Get("useCookies"))
	assert.False(t, q.Has("withUser"))
	assert.False(t, q.Has("includeCounters"))
}

func TestScrapeQuery_RequiresURL(t *testing.T) {
	_, err := scrapeQuery(callRequest(map[string]any{"limit": float64(3)}))
	assert.Error(t, err)
}

func TestHandleScrapeFeed(t *testing.T) {
	var gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotQuery = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"items":[{"id":"1","url":"https://x.com/nasa/status/1","text":"liftoff","author":"nasa","createdAt":"2024-01-02T03:04:05Z","isRepost":false,"engagementRaw":null}]}`))
	}))
	defer srv.Close()

	h := handleScrapeFeed(srv.URL, "k", srv.Client())
	res, err := h(context.Background(), callRequest(map[string]any{"url": "https://x.com/nasa"}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "Found 1 posts")
	assert.Contains(t, text, "@nasa 2024-01-02T03:04:05Z https://x.com/nasa/status/1")
	assert.Contains(t, text, "liftoff")
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "https://x.com/nasa", gotQuery)
}

func TestHandleScrapeFeed_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"NAVIGATION_FAILED: navigation to target URL failed"}`))
	}))
	defer srv.Close()

	h := handleScrapeFeed(srv.URL, "", srv.Client())
	res, err := h(context.Background(), callRequest(map[string]any{"url": "https://x.com/nasa"}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "NAVIGATION_FAILED")
}
