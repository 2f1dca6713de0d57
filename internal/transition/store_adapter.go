package transition

import (
	"context"
	"database/sql"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/store/repository"
)

// repositoryStore adapts the Postgres completed repository to the engine's
// transaction interface.
type repositoryStore struct {
	repo *repository.CompletedRepository
}

// NewRepositoryStore wraps the completed repository as a CompletedStore.
func NewRepositoryStore(repo *repository.CompletedRepository) CompletedStore {
	return &repositoryStore{repo: repo}
}

func (s *repositoryStore) Begin(ctx context.Context) (CompletedTx, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &repositoryTx{repo: s.repo, tx: tx}, nil
}

type repositoryTx struct {
	repo *repository.CompletedRepository
	tx   *sql.Tx
}

func (t *repositoryTx) Upsert(ctx context.Context, rec *match.CompletedMatchRecord) error {
	return t.repo.UpsertInTx(ctx, t.tx, rec)
}

func (t *repositoryTx) Commit() error   { return t.tx.Commit() }
func (t *repositoryTx) Rollback() error { return t.tx.Rollback() }
