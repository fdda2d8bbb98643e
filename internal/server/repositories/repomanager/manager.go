package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/admagic/internal/dbx"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/users"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/verifications"
)

// RepositoryManager hands out repositories bound to a DBTX so services can
// run them either directly on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Verifications(db dbx.DBTX) verifications.Repository
}
