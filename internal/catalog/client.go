package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"

	"booker/pkg/domain"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/books/v1"
	defaultMaxResults = 20
)

// Client calls the Google Books volumes API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	group      singleflight.Group
}

// APIError represents a catalog error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a catalog client. An empty baseURL targets the public
// Google Books API; the apiKey is optional.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search queries the catalog for volumes matching the query. Concurrent
// identical searches share a single upstream call.
func (c *Client) Search(query string, limit int) ([]domain.SearchResultBook, error) {
	if limit <= 0 {
		limit = defaultMaxResults
	}
	key := "search|" + strconv.Itoa(limit) + "|" + query
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.search(query, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.SearchResultBook), nil
}

// GetVolume fetches a single volume by id. A missing volume returns nil with
// no error.
func (c *Client) GetVolume(googleID string) (*domain.SearchResultBook, error) {
	key := "volume|" + googleID
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.getVolume(googleID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SearchResultBook), nil
}

func (c *Client) search(query string, limit int) ([]domain.SearchResultBook, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp volumesResponse
	if err := c.do(c.baseURL+"/volumes?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	books := make([]domain.SearchResultBook, 0, len(resp.Items))
	for _, item := range resp.Items {
		books = append(books, fromVolume(item))
	}
	return books, nil
}

func (c *Client) getVolume(googleID string) (*domain.SearchResultBook, error) {
	target := c.baseURL + "/volumes/" + url.PathEscape(googleID)
	if c.apiKey != "" {
		target += "?key=" + url.QueryEscape(c.apiKey)
	}

	var item volume
	err := c.do(target, &item)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	book := fromVolume(item)
	return &book, nil
}

func (c *Client) do(target string, out any) error {
	resp, err := c.httpClient.Get(target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title       string   `json:"title"`
		Authors     []string `json:"authors"`
		Description string   `json:"description"`
		PageCount   int      `json:"pageCount"`
		Categories  []string `json:"categories"`
		PreviewLink string   `json:"previewLink"`
		ImageLinks  struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func fromVolume(v volume) domain.SearchResultBook {
	thumbnail := v.VolumeInfo.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = v.VolumeInfo.ImageLinks.SmallThumbnail
	}
	return domain.SearchResultBook{
		GoogleID:    v.ID,
		Title:       v.VolumeInfo.Title,
		Authors:     v.VolumeInfo.Authors,
		Thumbnail:   thumbnail,
		Description: stripHTML(v.VolumeInfo.Description),
		PageCount:   v.VolumeInfo.PageCount,
		Categories:  v.VolumeInfo.Categories,
		PreviewLink: v.VolumeInfo.PreviewLink,
	}
}

// stripHTML flattens the markup Google Books embeds in descriptions down to
// plain text.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode:
			switch n.Data {
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " ")
}
