package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/branchbox/internal/model"
)

const environmentColumns = `id, repo_name, branch_name, stack_id, stack_name, alias, stop_time, start_time, status, services, owner, created_at, updated_at`

// EnvironmentService is the environment registry. A non-zero timeout bounds
// each round trip to the database.
type EnvironmentService struct {
	db      DB
	timeout time.Duration
}

func NewEnvironmentService(db DB) *EnvironmentService {
	return &EnvironmentService{db: db}
}

// Create inserts env under its identity key. An existing record with the same
// key yields ErrConflict.
func (s *EnvironmentService) Create(ctx context.Context, env *model.Environment) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if len(env.Services) == 0 {
		return fmt.Errorf("%w: environment has no services", ErrValidation)
	}
	key := model.IdentityOf(env)
	env.RepoName, env.BranchName = key.Repo, key.Branch

	services, err := json.Marshal(env.Services)
	if err != nil {
		return fmt.Errorf("marshal services: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO environments (`+environmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (repo_name, branch_name) DO NOTHING`,
		env.ID, env.RepoName, env.BranchName, env.StackID, env.StackName, env.Alias,
		env.StopTime, env.StartTime, env.Status, json.RawMessage(services), env.Owner,
		env.CreatedAt, env.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create environment %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("create environment %s: %w: key already registered", key, ErrConflict)
	}
	return nil
}

func (s *EnvironmentService) Get(ctx context.Context, key model.Key) (*model.Environment, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	row := s.db.QueryRow(ctx,
		`SELECT `+environmentColumns+` FROM environments WHERE repo_name = $1 AND branch_name = $2`,
		key.Repo, key.Branch,
	)
	env, err := scanEnvironment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get environment %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get environment %s: %w", key, err)
	}
	return env, nil
}

func (s *EnvironmentService) List(ctx context.Context) ([]model.Environment, error) {
	return s.query(ctx, "list environments",
		`SELECT `+environmentColumns+` FROM environments ORDER BY created_at, id`)
}

// ListByStatus returns every environment currently in status.
func (s *EnvironmentService) ListByStatus(ctx context.Context, status string) ([]model.Environment, error) {
	return s.query(ctx, "list environments by status",
		`SELECT `+environmentColumns+` FROM environments WHERE status = $1 ORDER BY created_at, id`, status)
}

// FindByServiceRef returns the environment having any service that tracks
// repo/branch, not only the one its key derives from.
func (s *EnvironmentService) FindByServiceRef(ctx context.Context, repo, branch string) (*model.Environment, error) {
	envs, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("find environment by service %s@%s: %w", repo, branch, err)
	}
	for i := range envs {
		if envs[i].HasService(repo, branch) {
			return &envs[i], nil
		}
	}
	return nil, fmt.Errorf("find environment by service %s@%s: %w", repo, branch, ErrNotFound)
}

// FindByStackID looks an environment up by the backend stack id or name.
func (s *EnvironmentService) FindByStackID(ctx context.Context, stackID string) (*model.Environment, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	row := s.db.QueryRow(ctx,
		`SELECT `+environmentColumns+` FROM environments WHERE stack_id = $1 OR stack_name = $1 LIMIT 1`,
		stackID,
	)
	env, err := scanEnvironment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("find environment by stack %s: %w", stackID, ErrNotFound)
		}
		return nil, fmt.Errorf("find environment by stack %s: %w", stackID, err)
	}
	return env, nil
}

// Transition moves the environment at key to status to, following the
// lifecycle state machine.
func (s *EnvironmentService) Transition(ctx context.Context, key model.Key, to string) error {
	env, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return s.TransitionFrom(ctx, key, env.Status, to)
}

// TransitionFrom moves the environment from the observed status from to to
// in a single conditional write. It fails with ErrConflict when the stored
// status is no longer from, and ErrNotFound when the record is gone.
func (s *EnvironmentService) TransitionFrom(ctx context.Context, key model.Key, from, to string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if !model.CanTransition(from, to) {
		return fmt.Errorf("transition %s from %s to %s: %w: transition not allowed", key, from, to, ErrConflict)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE environments SET status = $1, updated_at = now()
		 WHERE repo_name = $2 AND branch_name = $3 AND status = $4`,
		to, key.Repo, key.Branch, from,
	)
	if err != nil {
		return fmt.Errorf("transition %s to %s: %w", key, to, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = s.db.QueryRow(ctx,
		`SELECT status FROM environments WHERE repo_name = $1 AND branch_name = $2`,
		key.Repo, key.Branch,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("transition %s to %s: %w", key, to, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("transition %s to %s: %w", key, to, err)
	}
	return fmt.Errorf("transition %s to %s: %w: status is %s, expected %s", key, to, ErrConflict, current, from)
}

// Delete removes the record at key.
func (s *EnvironmentService) Delete(ctx context.Context, key model.Key) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.db.Exec(ctx,
		`DELETE FROM environments WHERE repo_name = $1 AND branch_name = $2`,
		key.Repo, key.Branch,
	)
	if err != nil {
		return fmt.Errorf("delete environment %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete environment %s: %w", key, ErrNotFound)
	}
	return nil
}

func (s *EnvironmentService) query(ctx context.Context, op, sql string, args ...any) ([]model.Environment, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var envs []model.Environment
	for rows.Next() {
		env, err := scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan environment: %w", err)
		}
		envs = append(envs, *env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate environments: %w", err)
	}
	return envs, nil
}

func scanEnvironment(row pgx.Row) (*model.Environment, error) {
	var (
		env      model.Environment
		services []byte
	)
	err := row.Scan(
		&env.ID, &env.RepoName, &env.BranchName, &env.StackID, &env.StackName, &env.Alias,
		&env.StopTime, &env.StartTime, &env.Status, &services, &env.Owner,
		&env.CreatedAt, &env.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(services, &env.Services); err != nil {
		return nil, fmt.Errorf("decode services of %s@%s: %w", env.RepoName, env.BranchName, err)
	}
	return &env, nil
}
