// Package garmin is a minimal Garmin Connect API client covering the
// wellness and activity endpoints this service consumes.
package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Garmin Connect API gateway.
const DefaultBaseURL = "https://connectapi.garmin.com"

// DateLayout is the calendar-date format the Connect API uses.
const DateLayout = "2006-01-02"

// Client is a Garmin Connect API client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseURL     string
	displayName string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a Connect client authenticated by the token source.
func NewClient(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient:  oauth2.NewClient(context.Background(), tokenSource),
		rateLimiter: NewRateLimiter(),
		baseURL:     DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDisplayName sets the profile display name used in wellness endpoint
// paths. Call after fetching the user profile.
func (c *Client) SetDisplayName(name string) {
	c.displayName = name
}

// GetUserProfile fetches the social profile, which carries the display
// name some wellness endpoints require.
func (c *Client) GetUserProfile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.getJSON(ctx, "/userprofile-service/socialProfile", nil, &profile); err != nil {
		return nil, fmt.Errorf("fetching user profile: %w", err)
	}
	return &profile, nil
}

// GetDailyStats fetches the daily summary (steps, resting and max HR) for a
// calendar date given as YYYY-MM-DD.
func (c *Client) GetDailyStats(ctx context.Context, date string) (*DailyStats, error) {
	params := url.Values{}
	params.Set("calendarDate", date)

	path := fmt.Sprintf("/usersummary-service/usersummary/daily/%s", url.PathEscape(c.displayName))
	var stats DailyStats
	if err := c.getJSON(ctx, path, params, &stats); err != nil {
		return nil, fmt.Errorf("fetching daily stats for %s: %w", date, err)
	}
	return &stats, nil
}

// GetHRV fetches the overnight HRV report for a calendar date.
func (c *Client) GetHRV(ctx context.Context, date string) (*HRVData, error) {
	var hrv HRVData
	if err := c.getJSON(ctx, "/hrv-service/hrv/"+date, nil, &hrv); err != nil {
		return nil, fmt.Errorf("fetching HRV for %s: %w", date, err)
	}
	return &hrv, nil
}

// GetBodyBattery fetches the body battery timeseries entries for a single
// calendar date. The API may return multiple entries for one day.
func (c *Client) GetBodyBattery(ctx context.Context, date string) ([]BodyBatteryEntry, error) {
	params := url.Values{}
	params.Set("startDate", date)
	params.Set("endDate", date)

	var entries []BodyBatteryEntry
	if err := c.getJSON(ctx, "/wellness-service/wellness/bodyBattery/reports/daily", params, &entries); err != nil {
		return nil, fmt.Errorf("fetching body battery for %s: %w", date, err)
	}
	return entries, nil
}

// GetSleep fetches the sleep summary for a calendar date.
func (c *Client) GetSleep(ctx context.Context, date string) (*SleepData, error) {
	params := url.Values{}
	params.Set("date", date)

	path := fmt.Sprintf("/wellness-service/wellness/dailySleepData/%s", url.PathEscape(c.displayName))
	var sleep SleepData
	if err := c.getJSON(ctx, path, params, &sleep); err != nil {
		return nil, fmt.Errorf("fetching sleep for %s: %w", date, err)
	}
	return &sleep, nil
}

// GetActivitiesByDate fetches all activities between two calendar dates
// inclusive, paging until the API runs out.
func (c *Client) GetActivitiesByDate(ctx context.Context, startDate, endDate string) ([]Activity, error) {
	var all []Activity
	start := 0
	limit := 100

	for {
		params := url.Values{}
		params.Set("startDate", startDate)
		params.Set("endDate", endDate)
		params.Set("start", strconv.Itoa(start))
		params.Set("limit", strconv.Itoa(limit))

		var page []Activity
		if err := c.getJSON(ctx, "/activitylist-service/activities/search/activities", params, &page); err != nil {
			return all, fmt.Errorf("fetching activities from offset %d: %w", start, err)
		}

		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		if len(page) < limit {
			break
		}
		start += limit
	}

	return all, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
