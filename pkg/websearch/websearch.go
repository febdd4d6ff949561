// Package websearch provides the external lookup surface: news
// headlines, web search, page fetches, wikipedia summaries and paper
// search. Results are cached briefly so repeated lookups in one
// conversation do not hammer upstream APIs.
package websearch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	maxPageText    = 15000
	defaultResults = 5
)

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
}

type WikiResult struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type Paper struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Year      int    `json:"year"`
	Abstract  string `json:"abstract"`
	URL       string `json:"url"`
	Citations int    `json:"citations"`
}

type Client struct {
	googleAPIKey string
	googleCSEID  string
	httpClient   *http.Client
	cache        *cache.Cache
}

func NewClient(googleAPIKey, googleCSEID string) *Client {
	return &Client{
		googleAPIKey: googleAPIKey,
		googleCSEID:  googleCSEID,
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		cache:        cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

// News fetches headlines from the Google News RSS feed for a query.
func (c *Client) News(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		query = "top news today"
	}

	cacheKey := "news:" + query
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Result), nil
	}

	feedURL := "https://news.google.com/rss/search?q=" + url.QueryEscape(query)
	body, err := c.get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	results := make([]Result, 0, defaultResults)
	for i, item := range feed.Channel.Items {
		if i >= defaultResults {
			break
		}
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Summary: StripHTML(item.Description, 0),
		})
	}

	c.cache.Set(cacheKey, results, cache.DefaultExpiration)
	return results, nil
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search queries the Google Custom Search Engine.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.googleAPIKey == "" || c.googleCSEID == "" {
		return nil, fmt.Errorf("google api key or cse id is not configured")
	}

	cacheKey := "search:" + query
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Result), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.googleAPIKey)
	params.Set("cx", c.googleCSEID)
	params.Set("num", fmt.Sprintf("%d", defaultResults))

	body, err := c.get(ctx, "https://www.googleapis.com/customsearch/v1?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("google search api error: %w", err)
	}

	var parsed cseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Summary: item.Snippet,
		})
	}

	c.cache.Set(cacheKey, results, cache.DefaultExpiration)
	return results, nil
}

// Visit fetches a page and returns its cleaned text content, capped so
// it fits safely into a model context window.
func (c *Client) Visit(ctx context.Context, pageURL string) (string, error) {
	cacheKey := "visit:" + pageURL
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(string), nil
	}

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}

	text := StripHTML(string(body), maxPageText)
	c.cache.Set(cacheKey, text, cache.DefaultExpiration)
	return text, nil
}

type wikiSummaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Wiki fetches the lead summary of a Wikipedia article.
func (c *Client) Wiki(ctx context.Context, query string) (*WikiResult, error) {
	cacheKey := "wiki:" + query
	if cached, found := c.cache.Get(cacheKey); found {
		result := cached.(WikiResult)
		return &result, nil
	}

	title := url.PathEscape(strings.ReplaceAll(query, " ", "_"))
	body, err := c.get(ctx, "https://en.wikipedia.org/api/rest_v1/page/summary/"+title)
	if err != nil {
		return nil, fmt.Errorf("no wikipedia page found for %q: %w", query, err)
	}

	var parsed wikiSummaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.Type == "disambiguation" {
		return nil, fmt.Errorf("%q is ambiguous, try a more specific title", query)
	}

	result := WikiResult{
		Title:   parsed.Title,
		Summary: parsed.Extract,
		URL:     parsed.ContentURLs.Desktop.Page,
	}
	c.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return &result, nil
}

type scholarResponse struct {
	Data []struct {
		Title   string `json:"title"`
		Year    int    `json:"year"`
		URL     string `json:"url"`
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
		Abstract      string `json:"abstract"`
		CitationCount int    `json:"citationCount"`
	} `json:"data"`
}

// Papers searches Semantic Scholar for academic papers.
func (c *Client) Papers(ctx context.Context, query string) ([]Paper, error) {
	cacheKey := "papers:" + query
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Paper), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", defaultResults))
	params.Set("fields", "title,authors,year,abstract,url,citationCount")

	body, err := c.get(ctx, "https://api.semanticscholar.org/graph/v1/paper/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch papers: %w", err)
	}

	var parsed scholarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(parsed.Data))
	for _, p := range parsed.Data {
		names := make([]string, 0, len(p.Authors))
		for _, a := range p.Authors {
			names = append(names, a.Name)
		}
		abstract := p.Abstract
		if abstract == "" {
			abstract = "No abstract available."
		}
		papers = append(papers, Paper{
			Title:     p.Title,
			Authors:   strings.Join(names, ", "),
			Year:      p.Year,
			Abstract:  abstract,
			URL:       p.URL,
			Citations: p.CitationCount,
		})
	}

	c.cache.Set(cacheKey, papers, cache.DefaultExpiration)
	return papers, nil
}
