package github

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/edvin/branchbox/internal/model"
)

const perPage = 100

// Client is a source-host client authenticated with an installation token.
type Client struct {
	gh *gh.Client
}

func NewClient(ctx context.Context, baseURL, token string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	c, err := newClient(ctx, baseURL, token)
	if err != nil {
		return nil, err
	}
	return &Client{gh: c}, nil
}

// ListRepositories returns every repository the installation can access.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	var out []model.Repository
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		page, resp, err := c.gh.Apps.ListRepos(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list installation repositories: %w", err)
		}
		for _, r := range page.Repositories {
			out = append(out, model.Repository{
				ID:       r.GetID(),
				Name:     r.GetName(),
				FullName: r.GetFullName(),
				Owner:    r.GetOwner().GetLogin(),
				URL:      r.GetHTMLURL(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]model.Branch, error) {
	var out []model.Branch
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	for {
		page, resp, err := c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list branches of %s/%s: %w", owner, repo, err)
		}
		for _, b := range page {
			out = append(out, model.Branch{Name: b.GetName(), SHA: b.GetCommit().GetSHA()})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// DownloadArchive fetches the zip archive of ref. The host answers with a
// redirect to the archive which the HTTP client follows.
func (c *Client) DownloadArchive(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	req, err := c.gh.NewRequest(http.MethodGet, fmt.Sprintf("repos/%s/%s/zipball/%s", owner, repo, ref), nil)
	if err != nil {
		return nil, fmt.Errorf("build archive request: %w", err)
	}

	var buf bytes.Buffer
	if _, err := c.gh.Do(ctx, req, &buf); err != nil {
		return nil, fmt.Errorf("download archive %s/%s@%s: %w", owner, repo, ref, err)
	}
	return buf.Bytes(), nil
}
