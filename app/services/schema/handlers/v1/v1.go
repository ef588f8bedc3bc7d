// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/chaindb/app/services/schema/handlers/v1/tablegrp"
	"github.com/ardanlabs/chaindb/business/web/mid"
	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/ardanlabs/chaindb/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *zap.SugaredLogger
	Tables     tablegrp.Lister
	Source     tabledef.Source
	CORSOrigin string
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	tgh := tablegrp.Handlers{
		Log:    cfg.Log,
		Tables: cfg.Tables,
		Source: cfg.Source,
	}

	var mw []web.Middleware
	if cfg.CORSOrigin != "" {
		mw = append(mw, mid.Cors(cfg.CORSOrigin))
	}

	app.Handle(http.MethodGet, version, "/tables", tgh.List, mw...)
	app.Handle(http.MethodGet, version, "/tables/:table", tgh.Query, mw...)
	app.Handle(http.MethodGet, version, "/tables/:table/columns", tgh.Columns, mw...)
	app.Handle(http.MethodGet, version, "/tables/:table/ddl", tgh.DDL, mw...)
}
