package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// record mirrors one item of GET /scrape.
type record struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Text          string  `json:"text"`
	Author        *string `json:"author"`
	CreatedAt     *string `json:"createdAt"`
	IsRepost      bool    `json:"isRepost"`
	EngagementRaw *string `json:"engagementRaw"`
}

// scrapeResponse mirrors the GET /scrape response body.
type scrapeResponse struct {
	Count int      `json:"count"`
	Items []record `json:"items"`
	Error string   `json:"error"`
}

func main() {
	apiURL := os.Getenv("XFEED_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("XFEED_API_KEY")

	s := server.NewMCPServer(
		"xfeed",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(scrapeFeedTool(), handleScrapeFeed(apiURL, apiKey, &http.Client{Timeout: 5 * time.Minute}))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func scrapeFeedTool() mcp.Tool {
	return mcp.NewTool("scrape_feed",
		mcp.WithDescription("Scrape posts from an X (Twitter) profile, list or search page with a headless browser. Returns post ids, links, text, authors and timestamps."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The feed page URL, e.g. https://x.com/nasa or https://x.com/i/lists/123"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of posts to return (default: 50)"),
		),
		mcp.WithBoolean("with_user",
			mcp.Description("Include the author handle of each post (default: true)"),
		),
		mcp.WithBoolean("include_counters",
			mcp.Description("Keep trailing reply/repost/like counters in post text (default: false)"),
		),
		mcp.WithBoolean("use_cookies",
			mcp.Description("Start with the server's signed-in session before falling back to guest (default: true)"),
		),
	)
}

// scrapeQuery maps tool arguments onto GET /scrape query parameters.
// Arguments the caller did not set are left to the server defaults.
func scrapeQuery(request mcp.CallToolRequest) (url.Values, error) {
	target, err := request.RequireString("url")
	if err != nil {
		return nil, fmt.Errorf("url is required")
	}
	q := url.Values{"url": {target}}

	args := request.GetArguments()
	if _, ok := args["limit"]; ok {
		q.Set("limit", strconv.Itoa(request.GetInt("limit", 0)))
	}
	for arg, param := range map[string]string{
		"with_user":        "withUser",
		"include_counters": "includeCounters",
		"use_cookies":      "useCookies",
	} {
		if _, ok := args[arg]; ok {
			q.Set(param, strconv.FormatBool(request.GetBool(arg, false)))
		}
	}
	return q, nil
}

func handleScrapeFeed(apiURL, apiKey string, client *http.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := scrapeQuery(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/scrape?"+q.Encode(), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var scrapeResp scrapeResponse
		if err := json.Unmarshal(respBody, &scrapeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			msg := scrapeResp.Error
			if msg == "" {
				msg = resp.Status
			}
			return mcp.NewToolResultError(fmt.Sprintf("scrape failed (%d): %s", resp.StatusCode, msg)), nil
		}

		return mcp.NewToolResultText(formatRecords(scrapeResp)), nil
	}
}

func formatRecords(r scrapeResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d posts\n", r.Count)
	for i, it := range r.Items {
		sb.WriteString("\n--- [")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("] ")
		if it.Author != nil {
			sb.WriteString("@" + *it.Author + " ")
		}
		if it.CreatedAt != nil {
			sb.WriteString(*it.CreatedAt + " ")
		}
		if it.IsRepost {
			sb.WriteString("(repost) ")
		}
		sb.WriteString(it.URL)
		sb.WriteString(" ---\n")
		sb.WriteString(it.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
