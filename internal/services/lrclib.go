// LRCLib lyrics database client
//
// Lookups are anonymous. Publishing requires a token obtained by solving a proof-of-work challenge.

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

const (
	defaultLRCLibBaseURL   = "https://lrclib.net"
	defaultLRCLibUserAgent = "libget (https://github.com/desertthunder/libget)"
	publishTokenHeader     = "X-Publish-Token"
)

// LRCLibOpts configures an [LRCLibService].
type LRCLibOpts struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration // per request; zero disables
	HTTPClient *http.Client
}

// LRCLibService talks to the LRCLib HTTP API.
type LRCLibService struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// lrclibError is the error body returned for non-2xx responses.
type lrclibError struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// NewLRCLibService creates a new LRCLib client.
func NewLRCLibService(opts LRCLibOpts) *LRCLibService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultLRCLibBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultLRCLibUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &LRCLibService{
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
	}
}

// Name returns the service name.
func (s *LRCLibService) Name() string {
	return "LRCLib"
}

// GetLyrics looks up the record matching params exactly.
//
// Calls GET /api/get. A 404 is reported as [shared.ErrLyricsNotFound].
func (s *LRCLibService) GetLyrics(ctx context.Context, params models.LookupParams) (*models.RawLyrics, error) {
	query := url.Values{
		"track_name":  {params.Title},
		"artist_name": {params.ArtistName},
		"album_name":  {params.AlbumName},
		"duration":    {formatDuration(params.Duration)},
	}

	var raw models.RawLyrics
	status, err := s.doRequest(ctx, http.MethodGet, "/api/get", query, nil, nil, &raw)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrLyricsNotFound, params.ArtistName, params.Title)
	}
	if err != nil {
		return nil, err
	}
	return &raw, nil
}

// SearchLyrics returns every record matching params. Empty fields are omitted from the query.
//
// Calls GET /api/search.
func (s *LRCLibService) SearchLyrics(ctx context.Context, params models.LookupParams) ([]models.RawLyrics, error) {
	query := url.Values{"track_name": {params.Title}}
	if params.ArtistName != "" {
		query.Set("artist_name", params.ArtistName)
	}
	if params.AlbumName != "" {
		query.Set("album_name", params.AlbumName)
	}

	var results []models.RawLyrics
	if _, err := s.doRequest(ctx, http.MethodGet, "/api/search", query, nil, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// RequestChallenge obtains a fresh proof-of-work challenge.
//
// Calls POST /api/request-challenge.
func (s *LRCLibService) RequestChallenge(ctx context.Context) (*models.Challenge, error) {
	var challenge models.Challenge
	if _, err := s.doRequest(ctx, http.MethodPost, "/api/request-challenge", nil, nil, nil, &challenge); err != nil {
		return nil, err
	}

	if challenge.Prefix == "" || challenge.Target == "" {
		return nil, fmt.Errorf("%w: empty prefix or target", shared.ErrInvalidChallenge)
	}
	return &challenge, nil
}

// Publish submits lyrics authorized by token.
//
// Calls POST /api/publish with the token in the X-Publish-Token header.
func (s *LRCLibService) Publish(ctx context.Context, req models.PublishRequest, token models.PublishToken) error {
	header := http.Header{}
	header.Set(publishTokenHeader, string(token))

	_, err := s.doRequest(ctx, http.MethodPost, "/api/publish", nil, req, header, nil)
	return err
}

// doRequest performs one bounded request and decodes a JSON result.
// It returns the response status code (0 when no response arrived) alongside any error.
func (s *LRCLibService) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any, header http.Header, result any) (int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Lrclib-Client", s.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, requestError(method+" "+endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp lrclibError
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return resp.StatusCode, fmt.Errorf("%w: lrclib API error (status %d): %s", shared.ErrNetwork, resp.StatusCode, errResp.Message)
		}
		return resp.StatusCode, fmt.Errorf("%w: lrclib API error: status %d", shared.ErrNetwork, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, requestError("decode "+endpoint, err)
		}
	}

	return resp.StatusCode, nil
}

// formatDuration renders seconds as the whole number LRCLib matches against.
func formatDuration(seconds float64) string {
	return strconv.FormatFloat(math.Round(seconds), 'f', 0, 64)
}
