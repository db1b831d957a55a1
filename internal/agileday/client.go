// Package agileday provides a thin JSON API client for the AgileDay hour
// tracking system, fetching only what an invoicing run needs: submitted
// time entries and project metadata.
package agileday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/normalize"
)

// EnvToken is the environment variable holding the API token.
const EnvToken = "AGILEDAY_TOKEN"

const defaultBaseURL = "https://sevendos.agileday.io/api/v1"

// Project is the subset of project metadata the invoicing run reads.
type Project struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
}

// Client is an AgileDay API client. It caches project lookups for the
// lifetime of the client; a run touches each project many times.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger

	projectCache map[string]Project
}

// NewClient creates a Client. An empty baseURL selects the production API;
// a zero timeout defaults to one minute.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	logger.Debug("AgileDay client ready",
		zap.String("base_url", baseURL),
		zap.String("token", maskToken(token)))
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
		projectCache: make(map[string]Project),
	}, nil
}

// NewClientFromEnv creates a Client with the token from AGILEDAY_TOKEN.
func NewClientFromEnv(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	return NewClient(baseURL, os.Getenv(EnvToken), timeout, logger)
}

// TimeEntries fetches the time entries between start and end with the given
// status. Entries come back as raw rows keyed by the API's own field names,
// ready for normalization; row numbers count from one in response order.
func (c *Client) TimeEntries(ctx context.Context, start, end time.Time, status string) ([]normalize.RawRow, error) {
	query := url.Values{}
	query.Set("startDate", start.Format("2006-01-02"))
	query.Set("endDate", end.Format("2006-01-02"))
	query.Set("status", status)

	c.logger.Info("Fetching time entries",
		zap.String("start", query.Get("startDate")),
		zap.String("end", query.Get("endDate")),
		zap.String("status", status))

	var entries []map[string]any
	if err := c.getJSON(ctx, "/time_reporting?"+query.Encode(), &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch time entries: %w", err)
	}

	rows := make([]normalize.RawRow, 0, len(entries))
	for i, entry := range entries {
		fields := make(map[string]string, len(entry))
		for key, value := range entry {
			fields[key] = stringify(value)
		}
		rows = append(rows, normalize.RawRow{Number: i + 1, Fields: fields})
	}

	c.logger.Info("Fetched time entries", zap.Int("entries", len(rows)))
	return rows, nil
}

// Project fetches project metadata by id, with caching.
func (c *Client) Project(ctx context.Context, projectID string) (Project, error) {
	if project, ok := c.projectCache[projectID]; ok {
		return project, nil
	}

	var project Project
	if err := c.getJSON(ctx, "/project/id/"+url.PathEscape(projectID), &project); err != nil {
		return Project{}, fmt.Errorf("failed to fetch project %s: %w", projectID, err)
	}
	c.projectCache[projectID] = project
	return project, nil
}

// ProjectData fetches metadata for every distinct project the rows reference.
// The pass is informational: a failed lookup is logged and skipped so one
// missing project does not fail a whole fetch.
func (c *Client) ProjectData(ctx context.Context, rows []normalize.RawRow) map[string]Project {
	ids := make(map[string]struct{})
	for _, row := range rows {
		if id := row.Fields["projectId"]; id != "" {
			ids[id] = struct{}{}
		}
	}
	c.logger.Info("Found unique projects", zap.Int("projects", len(ids)))

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	projects := make(map[string]Project, len(sorted))
	for _, id := range sorted {
		project, err := c.Project(ctx, id)
		if err != nil {
			c.logger.Warn("Failed to fetch project",
				zap.String("project_id", id),
				zap.Error(err))
			continue
		}
		projects[id] = project
		c.logger.Debug("Project metadata",
			zap.String("project_id", id),
			zap.String("type", project.Type),
			zap.String("company", project.Company.Name))
	}
	return projects
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "invoice-transfer/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: token %s", ErrUnauthorized, maskToken(c.token))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// stringify renders a decoded JSON value the way the hour export CSV would:
// floats without a trailing ".0" when integral, booleans capitalized.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
