package github

import (
	"context"

	"github.com/edvin/branchbox/internal/model"
)

// Host performs single source-host calls with a caller-supplied token.
type Host struct {
	baseURL string
}

func NewHost(baseURL string) *Host {
	return &Host{baseURL: baseURL}
}

func (h *Host) ListRepositories(ctx context.Context, token string) ([]model.Repository, error) {
	c, err := NewClient(ctx, h.baseURL, token)
	if err != nil {
		return nil, err
	}
	return c.ListRepositories(ctx)
}

func (h *Host) ListBranches(ctx context.Context, token, owner, repo string) ([]model.Branch, error) {
	c, err := NewClient(ctx, h.baseURL, token)
	if err != nil {
		return nil, err
	}
	return c.ListBranches(ctx, owner, repo)
}

func (h *Host) DownloadArchive(ctx context.Context, token, owner, repo, ref string) ([]byte, error) {
	c, err := NewClient(ctx, h.baseURL, token)
	if err != nil {
		return nil, err
	}
	return c.DownloadArchive(ctx, owner, repo, ref)
}
