package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/edvin/branchbox/internal/api/request"
	"github.com/edvin/branchbox/internal/api/response"
	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/model"
)

// EnvironmentLister reads the registry.
type EnvironmentLister interface {
	List(ctx context.Context) ([]model.Environment, error)
}

// Provisioner creates and tears down environments.
type Provisioner interface {
	Create(ctx context.Context, params core.CreateParams) (*model.Environment, error)
	Delete(ctx context.Context, ref core.DeleteRef) (*model.Environment, error)
}

type Environment struct {
	envs      EnvironmentLister
	provision Provisioner
}

func NewEnvironment(envs EnvironmentLister, provision Provisioner) *Environment {
	return &Environment{envs: envs, provision: provision}
}

// List godoc
//
//	@Summary		List environments
//	@Tags			Environments
//	@Security		ApiKeyAuth
//	@Success		200 {array} model.Environment
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/envs [get]
func (h *Environment) List(w http.ResponseWriter, r *http.Request) {
	envs, err := h.envs.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if envs == nil {
		envs = []model.Environment{}
	}
	response.WriteJSON(w, http.StatusOK, envs)
}

// Create godoc
//
//	@Summary		Create an environment
//	@Description	Provisions a backend stack for the services. The environment starts in CREATING.
//	@Tags			Environments
//	@Security		ApiKeyAuth
//	@Param			body body request.CreateEnvironment true "Services and schedule"
//	@Success		201 {object} model.Environment
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		409 {object} response.ErrorResponse
//	@Failure		502 {object} response.ErrorResponse
//	@Router			/envs [post]
func (h *Environment) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEnvironment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	services, err := req.ServiceList()
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.provision.Create(r.Context(), core.CreateParams{
		Services:  services,
		Alias:     req.Alias,
		StopTime:  req.StopTime.Ptr(),
		StartTime: req.StartTime.Ptr(),
		Owner:     req.Owner,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, env)
}

// Delete godoc
//
//	@Summary		Delete an environment
//	@Description	Deletes the backend stack and removes the record, or keeps it as ARCHIVED.
//	@Tags			Environments
//	@Security		ApiKeyAuth
//	@Param			stack_id query string false "Backend stack id or name"
//	@Param			repo query string false "Key repository"
//	@Param			branch query string false "Key branch"
//	@Param			archive query bool false "Keep the record as ARCHIVED"
//	@Success		200 {object} model.Environment
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Failure		502 {object} response.ErrorResponse
//	@Router			/envs [delete]
func (h *Environment) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := core.DeleteRef{
		StackID: q.Get("stack_id"),
		Repo:    q.Get("repo"),
		Branch:  q.Get("branch"),
	}
	if v := q.Get("archive"); v != "" {
		archive, err := strconv.ParseBool(v)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, "archive must be a boolean")
			return
		}
		ref.Archive = archive
	}
	if ref.StackID == "" && (ref.Repo == "" || ref.Branch == "") {
		response.WriteError(w, http.StatusBadRequest, "stack_id or repo and branch are required")
		return
	}

	env, err := h.provision.Delete(r.Context(), ref)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, env)
}
