// Command studioctl runs schema migrations and provisions teacher accounts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/repository"
	"github.com/noah-isme/studio-lessons-api/internal/service"
	"github.com/noah-isme/studio-lessons-api/migrations"
	"github.com/noah-isme/studio-lessons-api/pkg/config"
	"github.com/noah-isme/studio-lessons-api/pkg/database"
	"github.com/noah-isme/studio-lessons-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	conn := &lazyDB{cfg: cfg.Database}
	defer conn.Close()

	deps := commandDeps{
		migrate: func(ctx context.Context, command string, args ...string) error {
			db, err := conn.Get()
			if err != nil {
				return err
			}
			return migrations.Run(ctx, db.DB, command, args...)
		},
		provision: func(ctx context.Context, in provisionInput) (*provisionResult, error) {
			db, err := conn.Get()
			if err != nil {
				return nil, err
			}
			return newProvisioner(db, logr).Provision(ctx, in)
		},
	}

	if err := newRootCmd(deps).ExecuteContext(context.Background()); err != nil {
		logr.Error("studioctl failed", zap.Error(err))
		os.Exit(1)
	}
}

// lazyDB opens the pool on first use so --help never needs a database.
type lazyDB struct {
	cfg config.DatabaseConfig
	db  *sqlx.DB
}

func (l *lazyDB) Get() (*sqlx.DB, error) {
	if l.db != nil {
		return l.db, nil
	}
	db, err := database.NewPostgres(l.cfg)
	if err != nil {
		return nil, err
	}
	l.db = db
	return db, nil
}

func (l *lazyDB) Close() {
	if l.db != nil {
		_ = l.db.Close()
	}
}

func newProvisioner(db *sqlx.DB, logr *zap.Logger) *provisioner {
	return &provisioner{
		users:    repository.NewUserRepository(db),
		teachers: service.NewTeacherService(repository.NewTeacherRepository(db), nil, logr),
		tx:       repository.NewTransactor(db),
	}
}
