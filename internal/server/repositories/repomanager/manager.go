package repomanager

import (
	"context"
	"database/sql"

	"github.com/alivecn/funarcade/internal/dbx"
	"github.com/alivecn/funarcade/internal/server/repositories/posts"
	"github.com/alivecn/funarcade/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
}
