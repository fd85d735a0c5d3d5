package server

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openmined/fileagent/internal/server/acl"
	"github.com/openmined/fileagent/internal/server/auth"
	"github.com/openmined/fileagent/internal/server/files"
)

type Services struct {
	Store  acl.Store
	Engine *acl.Engine
	Files  *files.Service
	Auth   *auth.AuthService
}

func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	store, err := acl.NewSqliteStore(db)
	if err != nil {
		return nil, fmt.Errorf("create acl store: %w", err)
	}

	filesSvc, err := files.NewService(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("create files service: %w", err)
	}

	return &Services{
		Store:  store,
		Engine: acl.NewEngine(store),
		Files:  filesSvc,
		Auth:   auth.NewAuthService(&config.Auth),
	}, nil
}
