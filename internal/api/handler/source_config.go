package handler

import (
	"context"
	"net/http"

	"github.com/edvin/branchbox/internal/api/request"
	"github.com/edvin/branchbox/internal/api/response"
	"github.com/edvin/branchbox/internal/model"
)

// SourceConfigStore reads and writes the source-host credentials.
type SourceConfigStore interface {
	Config(ctx context.Context) model.SourceConfig
	SaveConfig(ctx context.Context, creds model.GitHubCredentials) error
}

type SourceConfig struct {
	store SourceConfigStore
}

func NewSourceConfig(store SourceConfigStore) *SourceConfig {
	return &SourceConfig{store: store}
}

// Get godoc
//
//	@Summary		Get source host config
//	@Description	Secret material is reported only by presence.
//	@Tags			Config
//	@Security		ApiKeyAuth
//	@Success		200 {object} model.SourceConfig
//	@Router			/config [get]
func (h *SourceConfig) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.store.Config(r.Context()))
}

// Update godoc
//
//	@Summary		Update source host config
//	@Description	Stores the given fields. Omitted fields keep their value.
//	@Tags			Config
//	@Security		ApiKeyAuth
//	@Param			body body request.SourceConfig true "Credential fields"
//	@Success		200 {object} model.SourceConfig
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/config [put]
func (h *SourceConfig) Update(w http.ResponseWriter, r *http.Request) {
	var req request.SourceConfig
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.SaveConfig(r.Context(), req.Credentials()); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, h.store.Config(r.Context()))
}
