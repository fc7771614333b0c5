package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/edvin/branchbox/internal/api/request"
	"github.com/edvin/branchbox/internal/api/response"
	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/model"
)

// Deployer uploads environment sources.
type Deployer interface {
	DeployEnvironment(ctx context.Context, key model.Key, tokens core.TokenSource) (*model.DeployResult, error)
	Deploy(ctx context.Context, stackName string, services []model.Service, token string) (*model.DeployResult, error)
}

// TokenSessions opens a token cache for one request.
type TokenSessions func() core.TokenSource

type Deploy struct {
	deployer Deployer
	tokens   TokenSessions
}

func NewDeploy(deployer Deployer, tokens TokenSessions) *Deploy {
	return &Deploy{deployer: deployer, tokens: tokens}
}

// Deploy godoc
//
//	@Summary		Deploy an environment
//	@Description	Uploads the current source of every service. Returns 207 with the per-service result when some uploads failed.
//	@Tags			Environments
//	@Security		ApiKeyAuth
//	@Param			body body request.Deploy true "Environment key, or stack name and services"
//	@Success		200 {object} model.DeployResult
//	@Success		207 {object} model.DeployResult
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Failure		503 {object} response.ErrorResponse
//	@Router			/deploy [post]
func (h *Deploy) Deploy(w http.ResponseWriter, r *http.Request) {
	var req request.Deploy
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Check(); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens := h.tokens()
	var (
		result *model.DeployResult
		err    error
	)
	if req.ByKey() {
		result, err = h.deployer.DeployEnvironment(r.Context(), model.Key{Repo: req.Repo, Branch: req.Branch}, tokens)
	} else {
		var token string
		token, err = tokens.Token(r.Context())
		if err == nil {
			result, err = h.deployer.Deploy(r.Context(), req.StackName, req.ServiceList(), token)
		}
	}

	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusOK, result)
	case errors.Is(err, core.ErrPartialDeploy) && result != nil:
		response.WriteJSON(w, http.StatusMultiStatus, result)
	default:
		response.WriteServiceError(w, err)
	}
}
