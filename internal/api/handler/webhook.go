package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/api/response"
	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/github"
)

// PushHandler reacts to a push on a branch.
type PushHandler interface {
	OnPush(ctx context.Context, repo, branch string, tokens core.TokenSource) (*core.PushResult, error)
}

type Webhook struct {
	push   PushHandler
	tokens TokenSessions
	secret string
}

// NewWebhook creates the push receiver. With an empty secret signatures are
// not checked.
func NewWebhook(push PushHandler, tokens TokenSessions, secret string) *Webhook {
	return &Webhook{push: push, tokens: tokens, secret: secret}
}

// GitHub godoc
//
//	@Summary		Receive a GitHub webhook
//	@Description	Push events redeploy the environment tracking the branch. Other events are acknowledged and ignored.
//	@Tags			Webhooks
//	@Success		200 {object} core.PushResult
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/webhooks/github [post]
func (h *Webhook) GitHub(w http.ResponseWriter, r *http.Request) {
	event, ok, err := github.ParsePushEvent(r, h.secret)
	switch {
	case errors.Is(err, github.ErrInvalidSignature):
		response.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case !ok:
		response.WriteJSON(w, http.StatusOK, core.PushResult{Outcome: core.PushIgnored})
		return
	}

	result, err := h.push.OnPush(r.Context(), event.Repo, event.Branch, h.tokens())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("repo", event.Repo).Str("branch", event.Branch).Msg("push dispatch failed")
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, result)
}
