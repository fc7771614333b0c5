package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/branchbox/internal/api/response"
	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/model"
)

// RepositoryLister lists what the source host installation can access.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, tokens core.TokenSource) ([]model.Repository, error)
	ListBranches(ctx context.Context, tokens core.TokenSource, owner, repo string) ([]model.Branch, error)
}

type Repository struct {
	repos  RepositoryLister
	tokens TokenSessions
}

func NewRepository(repos RepositoryLister, tokens TokenSessions) *Repository {
	return &Repository{repos: repos, tokens: tokens}
}

// List godoc
//
//	@Summary		List repositories
//	@Tags			Repositories
//	@Security		ApiKeyAuth
//	@Success		200 {array} model.Repository
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/repos [get]
func (h *Repository) List(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repos.ListRepositories(r.Context(), h.tokens())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, repos)
}

// Branches godoc
//
//	@Summary		List branches of a repository
//	@Tags			Repositories
//	@Security		ApiKeyAuth
//	@Param			owner path string true "Repository owner"
//	@Param			repo path string true "Repository name"
//	@Success		200 {array} model.Branch
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/repos/{owner}/{repo}/branches [get]
func (h *Repository) Branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.repos.ListBranches(r.Context(), h.tokens(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, branches)
}
