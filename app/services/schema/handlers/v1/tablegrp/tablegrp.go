// Package tablegrp maintains the group of handlers for table definition
// access.
package tablegrp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/chaindb/business/web/errs"
	"github.com/ardanlabs/chaindb/foundation/logger"
	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/ardanlabs/chaindb/foundation/web"
	"go.uber.org/zap"
)

// Lister provides the names of the stored table definitions.
type Lister interface {
	Keys() ([]string, error)
}

// Handlers manages the set of table definition endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Tables Lister
	Source tabledef.Source
}

// List returns the names of the stored table definitions.
func (h Handlers) List(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	keys, err := h.Tables.Keys()
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}

	return web.Respond(ctx, w, tableList{Tables: keys}, http.StatusOK)
}

// Query returns the full description of a table.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tbl := h.table(ctx, r)

	name, err := tbl.TableName()
	if err != nil {
		return errs.FromTable(err)
	}

	pk, err := tbl.PrimaryKeyColumn()
	if err != nil {
		return errs.FromTable(err)
	}

	all, err := tbl.AllColumns()
	if err != nil {
		return errs.FromTable(err)
	}

	notNull, err := tbl.NotNullColumnsExcludingPrimaryKey()
	if err != nil {
		return errs.FromTable(err)
	}

	nonPK, err := tbl.NonPrimaryKeyColumns()
	if err != nil {
		return errs.FromTable(err)
	}

	ddl, err := tbl.Definition()
	if err != nil {
		return errs.FromTable(err)
	}

	info := tableInfo{
		Key:        tbl.Name(),
		Name:       name,
		PrimaryKey: pk,
		Columns: columnSets{
			All:     all,
			NotNull: notNull,
			NonPK:   nonPK,
		},
		DDL: ddl,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Columns returns one column listing selected by the kind query parameter.
func (h Handlers) Columns(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tbl := h.table(ctx, r)

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = tabledef.KindAll
	}

	columns, err := tbl.ColumnsOf(kind)
	if err != nil {
		return errs.FromTable(err)
	}

	resp := columnList{
		Table:   tbl.Name(),
		Kind:    kind,
		Columns: columns,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// DDL returns the rendered CREATE TABLE statement as plain text.
func (h Handlers) DDL(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ddl, err := h.table(ctx, r).Definition()
	if err != nil {
		return errs.FromTable(err)
	}

	return web.RespondText(ctx, w, ddl, http.StatusOK)
}

func (h Handlers) table(ctx context.Context, r *http.Request) *tabledef.Table {
	log := logger.NewTrace(h.Log, "traceid", web.GetTraceID(ctx))
	return tabledef.New(web.Param(r, "table"), h.Source, log)
}
