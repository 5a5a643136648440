package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/moviehub/catalog/internal/biz"
	"github.com/moviehub/catalog/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"
)

const (
	defaultOmdbURL     = "https://www.omdbapi.com"
	defaultOmdbTimeout = 10 * time.Second
)

type omdbClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	log     *log.Helper
}

// NewOmdbClient creates the upstream metadata provider client. A zero rate
// limit disables throttling.
func NewOmdbClient(c *conf.Omdb, logger log.Logger) biz.MetadataProvider {
	if c == nil {
		c = &conf.Omdb{}
	}
	timeout := c.Timeout.AsDuration()
	if timeout <= 0 {
		timeout = defaultOmdbTimeout
	}
	baseURL := strings.TrimRight(c.Url, "/")
	if baseURL == "" {
		baseURL = defaultOmdbURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if c.RateLimit > 0 {
		burst := c.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(c.RateLimit), burst)
	}

	return &omdbClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  c.ApiKey,
		limiter: limiter,
		log:     log.NewHelper(log.With(logger, "module", "data/omdb")),
	}
}

type omdbResponse struct {
	Title        string       `json:"Title"`
	Year         string       `json:"Year"`
	Rated        string       `json:"Rated"`
	Released     string       `json:"Released"`
	Runtime      string       `json:"Runtime"`
	Genre        string       `json:"Genre"`
	Actors       string       `json:"Actors"`
	Plot         string       `json:"Plot"`
	Awards       string       `json:"Awards"`
	Poster       string       `json:"Poster"`
	TotalSeasons string       `json:"totalSeasons"`
	Ratings      []omdbRating `json:"Ratings"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

type omdbRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Fetch looks a title up once. There is no retry; the caller decides.
func (c *omdbClient) Fetch(ctx context.Context, title, year string) (*biz.ProviderRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", biz.ErrUpstreamUnavailable, err)
	}

	params := url.Values{}
	params.Set("t", title)
	if year != "" {
		params.Set("y", year)
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warnf("omdb request for %q failed: %v", title, err)
		return nil, fmt.Errorf("%w: %v", biz.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnf("omdb returned status %d for %q", resp.StatusCode, title)
		return nil, fmt.Errorf("%w: unexpected status code %d", biz.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var response omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", biz.ErrUpstreamUnavailable, err)
	}

	if strings.EqualFold(response.Response, "False") || strings.TrimSpace(response.Title) == "" {
		c.log.Infof("omdb has no record for %q (%s): %s", title, year, response.Error)
		return nil, biz.ErrMissingUpstreamData
	}

	rec := &biz.ProviderRecord{
		Title:        response.Title,
		Year:         response.Year,
		Rated:        response.Rated,
		Released:     response.Released,
		Runtime:      response.Runtime,
		Genre:        response.Genre,
		Actors:       response.Actors,
		Plot:         response.Plot,
		Awards:       response.Awards,
		Poster:       response.Poster,
		TotalSeasons: response.TotalSeasons,
	}
	for _, r := range response.Ratings {
		rec.Ratings = append(rec.Ratings, biz.ProviderRating{Source: r.Source, Value: r.Value})
	}
	return rec, nil
}
