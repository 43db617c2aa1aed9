// Package serpapi is a thin client for the SerpAPI search endpoint,
// covering the two engines the assistant uses: google_jobs and
// google_scholar.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// ErrNoAPIKey means the client was built without a key; callers should
// surface a configuration hint rather than retry.
var ErrNoAPIKey = errors.New("serpapi: api key not configured")

// Client calls SerpAPI. BaseURL and HTTP are exported so tests can point
// the client at a local server.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Job is one posting from the google_jobs engine.
type Job struct {
	Title       string
	Company     string
	Location    string
	Via         string
	Link        string
	Description string
	PostedAt    string
	Salary      string
}

// Paper is one result from the google_scholar engine.
type Paper struct {
	Title   string
	Link    string
	Snippet string
	Summary string
	CitedBy int
}

type jobsResponse struct {
	JobsResults []struct {
		Title              string `json:"title"`
		CompanyName        string `json:"company_name"`
		Location           string `json:"location"`
		Via                string `json:"via"`
		ShareLink          string `json:"share_link"`
		Description        string `json:"description"`
		DetectedExtensions struct {
			PostedAt string `json:"posted_at"`
			Salary   string `json:"salary"`
		} `json:"detected_extensions"`
		ApplyOptions []struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"apply_options"`
	} `json:"jobs_results"`
	Error string `json:"error"`
}

// SearchJobs queries the google_jobs engine. datePosted narrows recency
// (today, 3days, week, month); empty means no filter. At most limit jobs
// are returned when limit is positive.
func (c *Client) SearchJobs(ctx context.Context, query, location, datePosted string, limit int) ([]Job, error) {
	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", query)
	if location != "" {
		params.Set("location", location)
	}
	if datePosted != "" {
		params.Set("chips", "date_posted:"+datePosted)
	}

	var decoded jobsResponse
	if err := c.get(ctx, params, &decoded); err != nil {
		return nil, err
	}
	if decoded.Error != "" {
		// SerpAPI reports an empty result set through the error field.
		if strings.Contains(decoded.Error, "hasn't returned any results") {
			return []Job{}, nil
		}
		return nil, fmt.Errorf("serpapi: %s", decoded.Error)
	}

	jobs := make([]Job, 0, len(decoded.JobsResults))
	for _, r := range decoded.JobsResults {
		link := r.ShareLink
		if link == "" && len(r.ApplyOptions) > 0 {
			link = r.ApplyOptions[0].Link
		}
		jobs = append(jobs, Job{
			Title:       r.Title,
			Company:     r.CompanyName,
			Location:    r.Location,
			Via:         r.Via,
			Link:        link,
			Description: r.Description,
			PostedAt:    r.DetectedExtensions.PostedAt,
			Salary:      r.DetectedExtensions.Salary,
		})
	}
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

type scholarResponse struct {
	OrganicResults []struct {
		Title           string `json:"title"`
		Link            string `json:"link"`
		Snippet         string `json:"snippet"`
		PublicationInfo struct {
			Summary string `json:"summary"`
		} `json:"publication_info"`
		InlineLinks struct {
			CitedBy struct {
				Total int `json:"total"`
			} `json:"cited_by"`
		} `json:"inline_links"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// SearchScholar queries the google_scholar engine. yearFrom and yearTo
// bound the publication year when positive.
func (c *Client) SearchScholar(ctx context.Context, query string, yearFrom, yearTo, limit int) ([]Paper, error) {
	params := url.Values{}
	params.Set("engine", "google_scholar")
	params.Set("q", query)
	if yearFrom > 0 {
		params.Set("as_ylo", strconv.Itoa(yearFrom))
	}
	if yearTo > 0 {
		params.Set("as_yhi", strconv.Itoa(yearTo))
	}
	if limit > 0 {
		params.Set("num", strconv.Itoa(limit))
	}

	var decoded scholarResponse
	if err := c.get(ctx, params, &decoded); err != nil {
		return nil, err
	}
	if decoded.Error != "" {
		if strings.Contains(decoded.Error, "hasn't returned any results") {
			return []Paper{}, nil
		}
		return nil, fmt.Errorf("serpapi: %s", decoded.Error)
	}

	papers := make([]Paper, 0, len(decoded.OrganicResults))
	for _, r := range decoded.OrganicResults {
		papers = append(papers, Paper{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
			Summary: r.PublicationInfo.Summary,
			CitedBy: r.InlineLinks.CitedBy.Total,
		})
	}
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	params.Set("api_key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("call serpapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("serpapi HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode serpapi response: %w", err)
	}
	return nil
}
