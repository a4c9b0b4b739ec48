package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"profile-service/config"
	"profile-service/models"
)

// ErrUserNotFound reports a handle that does not exist on the remote source.
var ErrUserNotFound = errors.New("github user not found")

// SourceError wraps any other source failure: transport errors, rate limiting,
// timeouts, unexpected status codes. Callers treat them all as "source lookup
// failed" and never retry.
type SourceError struct {
	Status int
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source lookup failed: %v", e.Err)
	}
	return fmt.Sprintf("source lookup failed: status %d", e.Status)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// User is the remote source's profile shape.
type User struct {
	Login        string `json:"login"`
	AvatarURL    string `json:"avatar_url"`
	Bio          string `json:"bio"`
	Location     string `json:"location"`
	Blog         string `json:"blog"`
	PublicRepos  int    `json:"public_repos"`
	PublicGists  int    `json:"public_gists"`
	Followers    int    `json:"followers"`
	Following    int    `json:"following"`
	FollowersURL string `json:"followers_url"`
	FollowingURL string `json:"following_url"`
	ReposURL     string `json:"repos_url"`
}

// Account is the shape of follower/following list entries.
type Account struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// perPage is the source's maximum page size for list endpoints.
const perPage = 100

type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg config.GitHubConfig) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// GetUser fetches the profile for handle. An unknown handle is ErrUserNotFound;
// every other failure is a *SourceError.
func (c *Client) GetUser(ctx context.Context, handle string) (User, error) {
	var user User
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(handle)), &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// GetFollowers fetches the complete followers list for handle, traversing every
// page in order.
func (c *Client) GetFollowers(ctx context.Context, handle string) ([]Account, error) {
	return c.listAccounts(ctx, fmt.Sprintf("%s/users/%s/followers", c.baseURL, url.PathEscape(handle)))
}

// GetFollowing fetches the complete followings list for handle.
func (c *Client) GetFollowing(ctx context.Context, handle string) ([]Account, error) {
	return c.listAccounts(ctx, fmt.Sprintf("%s/users/%s/following", c.baseURL, url.PathEscape(handle)))
}

// GetRepos fetches every repository summary for handle.
func (c *Client) GetRepos(ctx context.Context, handle string) ([]models.Repo, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos", c.baseURL, url.PathEscape(handle))
	var all []models.Repo
	for page := 1; ; page++ {
		var batch []models.Repo
		if err := c.getJSON(ctx, pagedURL(endpoint, page), &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

func (c *Client) listAccounts(ctx context.Context, endpoint string) ([]Account, error) {
	var all []Account
	for page := 1; ; page++ {
		var batch []Account
		if err := c.getJSON(ctx, pagedURL(endpoint, page), &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

func pagedURL(endpoint string, page int) string {
	return fmt.Sprintf("%s?per_page=%d&page=%d", endpoint, perPage, page)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &SourceError{Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &SourceError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &SourceError{Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SourceError{Err: err}
	}
	return nil
}
