package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edvin/branchbox/internal/cloud"
	"github.com/edvin/branchbox/internal/github"
	"github.com/edvin/branchbox/internal/model"
)

// ---------- In-memory registry ----------

// memRegistry is an in-memory Registry with the same error semantics as
// EnvironmentService.
type memRegistry struct {
	mu            sync.Mutex
	envs          []model.Environment
	createErr     error
	listErr       error
	transitionErr map[string]error
}

func newMemRegistry(envs ...model.Environment) *memRegistry {
	r := &memRegistry{transitionErr: map[string]error{}}
	for _, e := range envs {
		key := model.IdentityOf(&e)
		e.RepoName, e.BranchName = key.Repo, key.Branch
		r.envs = append(r.envs, e)
	}
	return r
}

func (r *memRegistry) index(key model.Key) int {
	for i := range r.envs {
		if model.IdentityOf(&r.envs[i]) == key {
			return i
		}
	}
	return -1
}

func (r *memRegistry) Create(_ context.Context, env *model.Environment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	key := model.IdentityOf(env)
	if r.index(key) >= 0 {
		return fmt.Errorf("create %s: %w", key, ErrConflict)
	}
	env.RepoName, env.BranchName = key.Repo, key.Branch
	r.envs = append(r.envs, *env)
	return nil
}

func (r *memRegistry) Get(_ context.Context, key model.Key) (*model.Environment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(key)
	if i < 0 {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	env := r.envs[i]
	return &env, nil
}

func (r *memRegistry) List(context.Context) ([]model.Environment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]model.Environment(nil), r.envs...), nil
}

func (r *memRegistry) ListByStatus(_ context.Context, status string) ([]model.Environment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Environment
	for _, e := range r.envs {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRegistry) FindByServiceRef(ctx context.Context, repo, branch string) (*model.Environment, error) {
	envs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range envs {
		if envs[i].HasService(repo, branch) {
			return &envs[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRegistry) FindByStackID(_ context.Context, stackID string) (*model.Environment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.envs {
		if e.StackID == stackID || e.StackName == stackID {
			env := e
			return &env, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRegistry) Transition(ctx context.Context, key model.Key, to string) error {
	env, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	return r.TransitionFrom(ctx, key, env.Status, to)
}

func (r *memRegistry) TransitionFrom(_ context.Context, key model.Key, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.transitionErr[key.String()]; err != nil {
		return err
	}
	if !model.CanTransition(from, to) {
		return ErrConflict
	}
	i := r.index(key)
	if i < 0 {
		return ErrNotFound
	}
	if r.envs[i].Status != from {
		return ErrConflict
	}
	r.envs[i].Status = to
	return nil
}

func (r *memRegistry) Delete(_ context.Context, key model.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(key)
	if i < 0 {
		return ErrNotFound
	}
	r.envs = append(r.envs[:i], r.envs[i+1:]...)
	return nil
}

func (r *memRegistry) status(key model.Key) string {
	env, err := r.Get(context.Background(), key)
	if err != nil {
		return ""
	}
	return env.Status
}

// ---------- Stack backend ----------

type fakeStacks struct {
	mu        sync.Mutex
	created   map[string]string
	deleted   []string
	stacks    map[string]*cloud.Stack
	createErr error
	deleteErr error
}

func newFakeStacks() *fakeStacks {
	return &fakeStacks{created: map[string]string{}, stacks: map[string]*cloud.Stack{}}
}

func (f *fakeStacks) CreateStack(_ context.Context, name, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created[name] = body
	return "arn:aws:cloudformation:stack/" + name, nil
}

func (f *fakeStacks) DeleteStack(_ context.Context, stack string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, stack)
	return nil
}

func (f *fakeStacks) DescribeStack(_ context.Context, stack string) (*cloud.Stack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stacks[stack]
	if !ok {
		return nil, cloud.ErrNotFound
	}
	return s, nil
}

func (f *fakeStacks) setStack(name, status string, outputs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if outputs == nil {
		outputs = map[string]string{}
	}
	f.stacks[name] = &cloud.Stack{Name: name, Status: status, Outputs: outputs}
}

// ---------- Artifact store ----------

type fakeArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey map[string]error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{objects: map[string][]byte{}, failKey: map[string]error{}}
}

func (f *fakeArtifacts) Put(_ context.Context, bucket, key string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failKey[key]; err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = body
	return nil
}

func (f *fakeArtifacts) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}

// ---------- Source host ----------

type fakeSource struct {
	mu        sync.Mutex
	failRepo  map[string]error
	downloads []string
	tokens    []string
	repos     []model.Repository
	branches  []model.Branch
	listErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{failRepo: map[string]error{}}
}

func (f *fakeSource) ListRepositories(_ context.Context, token string) ([]model.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.repos, f.listErr
}

func (f *fakeSource) ListBranches(_ context.Context, token, owner, repo string) ([]model.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.branches, f.listErr
}

func (f *fakeSource) DownloadArchive(_ context.Context, token, owner, repo, ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	name := owner + "/" + repo + "@" + ref
	f.downloads = append(f.downloads, name)
	if err := f.failRepo[owner+"/"+repo]; err != nil {
		return nil, err
	}
	return []byte("zip:" + name), nil
}

// ---------- Instance controller ----------

type fakeInstances struct {
	mu      sync.Mutex
	calls   []string
	failErr error
}

func (f *fakeInstances) Stop(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop:"+id)
	return f.failErr
}

func (f *fakeInstances) Start(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start:"+id)
	return f.failErr
}

// ---------- Tokens and credentials ----------

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

type fakeCredStore struct {
	creds   model.GitHubCredentials
	loadErr error
	saved   []model.GitHubCredentials
}

func (f *fakeCredStore) Load(context.Context) (model.GitHubCredentials, error) {
	return f.creds, f.loadErr
}

func (f *fakeCredStore) Save(_ context.Context, creds model.GitHubCredentials) error {
	f.saved = append(f.saved, creds)
	return nil
}

type fakeExchanger struct {
	calls     int
	token     string
	expiresAt time.Time
	err       error
}

func (f *fakeExchanger) ExchangeToken(context.Context, string, string, string) (*github.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &github.Token{Value: fmt.Sprintf("%s-%d", f.token, f.calls), ExpiresAt: f.expiresAt}, nil
}

// ---------- Deployer ----------

type deployCall struct {
	stackName string
	services  []model.Service
	token     string
}

type recordingDeployer struct {
	calls  []deployCall
	result *model.DeployResult
	err    error
}

func (d *recordingDeployer) Deploy(_ context.Context, stackName string, services []model.Service, token string) (*model.DeployResult, error) {
	d.calls = append(d.calls, deployCall{stackName: stackName, services: services, token: token})
	if d.result == nil && d.err == nil {
		return &model.DeployResult{StackName: stackName}, nil
	}
	return d.result, d.err
}

var errBoom = errors.New("boom")
