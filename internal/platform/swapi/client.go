package swapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// PeopleList matches people/ (first page only; count is all we read)
type PeopleList struct {
	Count   int               `json:"count"`
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// Person matches people/{id}/
type Person struct {
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	HairColor string   `json:"hair_color"`
	SkinColor string   `json:"skin_color"`
	EyeColor  string   `json:"eye_color"`
	BirthYear string   `json:"birth_year"`
	Gender    string   `json:"gender"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Starships []string `json:"starships"`
	Vehicles  []string `json:"vehicles"`
	URL       string   `json:"url"`
}

// NewSession opens a scoped HTTP context with its own connection pool.
// Callers must Close it.
func (c *Client) NewSession() *Session {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Session{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
		},
		transport: transport,
		baseURL:   c.baseURL,
		userAgent: c.userAgent,
	}
}

// PeopleCount reads the total number of people from the first catalog page.
func (c *Client) PeopleCount(ctx context.Context) (int, error) {
	s := c.NewSession()
	defer s.Close()

	var res PeopleList
	if err := s.get(ctx, kindCount, s.baseURL+"/people/", &res); err != nil {
		return 0, fmt.Errorf("people count: %w", err)
	}
	return res.Count, nil
}

type Session struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	userAgent  string
}

func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}

// GetPerson returns ErrNotFound when the catalog no longer has the id.
func (s *Session) GetPerson(ctx context.Context, id int) (*Person, error) {
	u := s.baseURL + "/people/" + strconv.Itoa(id) + "/"

	var p Person
	if err := s.get(ctx, kindPerson, u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetField fetches an arbitrary resource and returns one of its top-level fields.
func (s *Session) GetField(ctx context.Context, url, field string) (string, error) {
	var res map[string]any
	if err := s.get(ctx, kindReference, url, &res); err != nil {
		return "", err
	}

	v, ok := res[field]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %q in %s", ErrMissingField, field, url)
	}
	if str, ok := v.(string); ok {
		return str, nil
	}
	return fmt.Sprint(v), nil
}

func (s *Session) get(ctx context.Context, kind, url string, target any) (err error) {
	start := time.Now()
	status := "error"
	defer func() {
		requestsTotal.WithLabelValues(kind, status).Inc()
		requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
