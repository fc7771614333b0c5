package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/model"
)

func TestDeploy_ByKey(t *testing.T) {
	m := &mockDeployer{}
	h := NewDeploy(m, tokensOf("tok", nil))
	result := &model.DeployResult{StackName: "BB-Env-1", Bucket: "b", Services: []model.ServiceUpload{{Repo: "a/b", Status: model.UploadUploaded}}}
	m.On("DeployEnvironment", mock.Anything, model.Key{Repo: "a/b", Branch: "main"}, mock.Anything).Return(result, nil)

	rec := httptest.NewRecorder()
	h.Deploy(rec, newRequest(http.MethodPost, "/deploy", map[string]any{"repo": "a/b", "branch": "main"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got model.DeployResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "BB-Env-1", got.StackName)
	m.AssertExpectations(t)
}

func TestDeploy_ByStackName(t *testing.T) {
	m := &mockDeployer{}
	h := NewDeploy(m, tokensOf("tok", nil))
	services := []model.Service{{Repo: "a/b", Branch: "main"}, {Repo: "a/c", Branch: "dev"}}
	m.On("Deploy", mock.Anything, "BB-Env-1", services, "tok").Return(&model.DeployResult{StackName: "BB-Env-1"}, nil)

	rec := httptest.NewRecorder()
	h.Deploy(rec, newRequest(http.MethodPost, "/deploy", map[string]any{
		"stack_name": "BB-Env-1",
		"services": []map[string]string{
			{"repo": "a/b", "branch": "main"},
			{"repo": "a/c", "branch": "dev"},
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	m.AssertExpectations(t)
}

func TestDeploy_ByStackNameWithoutToken(t *testing.T) {
	m := &mockDeployer{}
	h := NewDeploy(m, tokensOf("", core.ErrNotConfigured))

	rec := httptest.NewRecorder()
	h.Deploy(rec, newRequest(http.MethodPost, "/deploy", map[string]any{
		"stack_name": "BB-Env-1",
		"services":   []map[string]string{{"repo": "a/b", "branch": "main"}},
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	m.AssertNotCalled(t, "Deploy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeploy_PartialIsMultiStatus(t *testing.T) {
	m := &mockDeployer{}
	h := NewDeploy(m, tokensOf("tok", nil))
	result := &model.DeployResult{Services: []model.ServiceUpload{
		{Repo: "a/b", Status: model.UploadUploaded},
		{Repo: "a/c", Status: model.UploadFailed, Error: "404"},
	}}
	m.On("DeployEnvironment", mock.Anything, mock.Anything, mock.Anything).
		Return(result, fmt.Errorf("%w: 1 of 2 services uploaded", core.ErrPartialDeploy))

	rec := httptest.NewRecorder()
	h.Deploy(rec, newRequest(http.MethodPost, "/deploy", map[string]any{"repo": "a/b", "branch": "main"}))

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	var got model.DeployResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.UploadFailed, got.Services[1].Status)
}

func TestDeploy_NotReady(t *testing.T) {
	m := &mockDeployer{}
	h := NewDeploy(m, tokensOf("tok", nil))
	m.On("DeployEnvironment", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: artifact bucket not available yet", core.ErrDeploy))

	rec := httptest.NewRecorder()
	h.Deploy(rec, newRequest(http.MethodPost, "/deploy", map[string]any{"repo": "a/b", "branch": "main"}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeploy_BadRequests(t *testing.T) {
	bodies := []any{
		map[string]any{},
		map[string]any{"repo": "a/b"},
		map[string]any{"stack_name": "BB-Env-1"},
	}
	for _, body := range bodies {
		m := &mockDeployer{}
		h := NewDeploy(m, tokensOf("tok", nil))
		rec := httptest.NewRecorder()
		h.Deploy(rec, newRequest(http.MethodPost, "/deploy", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}
