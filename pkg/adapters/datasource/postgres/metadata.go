package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func qualifiedName(ref models.TableRef) string {
	// PostgreSQL queries run inside one database, so only schema and
	// table are rendered into SQL.
	return quoteIdent(ref.Schema) + "." + quoteIdent(ref.Table)
}

// ListTables returns tables (and views when includeViews is set) in the
// given schema. Row counts come from pg_class.reltuples; a negative or
// missing estimate is reported as unknown so the strategist falls back to
// a bounded subquery.
func (c *Connector) ListTables(ctx context.Context, database, schema string, includeViews bool) ([]datasource.TableMetadata, error) {
	pool, err := c.handle()
	if err != nil {
		return nil, err
	}

	kinds := []string{"BASE TABLE"}
	if includeViews {
		kinds = append(kinds, "VIEW")
	}

	const query = `
		SELECT
			t.table_name,
			t.table_type,
			COALESCE(obj_description(c.oid, 'pg_class'), ''),
			COALESCE(c.reltuples::bigint, -1)
		FROM information_schema.tables t
		LEFT JOIN pg_namespace n ON n.nspname = t.table_schema
		LEFT JOIN pg_class c ON c.relname = t.table_name AND c.relnamespace = n.oid
		WHERE t.table_schema = $1 AND t.table_type = ANY($2)
		ORDER BY t.table_name`

	rows, err := pool.Query(ctx, query, schema, kinds)
	if err != nil {
		return nil, classify("list tables", database+"."+schema, err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var (
			name, tableType, comment string
			relTuples                int64
		)
		if err := rows.Scan(&name, &tableType, &comment, &relTuples); err != nil {
			return nil, classify("scan table metadata", database+"."+schema, err)
		}

		meta := datasource.TableMetadata{
			Database: database,
			Schema:   schema,
			Name:     name,
			Kind:     models.TableKindBase,
			Comment:  comment,
		}
		if tableType == "VIEW" {
			meta.Kind = models.TableKindView
		} else if relTuples >= 0 {
			count := relTuples
			meta.RowCount = &count
		}
		tables = append(tables, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate tables", database+"."+schema, err)
	}
	return tables, nil
}

// ListColumns returns a table's columns in ordinal order, with column
// comments pulled from the catalog for the description checks.
func (c *Connector) ListColumns(ctx context.Context, ref models.TableRef) ([]datasource.ColumnMetadata, error) {
	pool, err := c.handle()
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.ordinal_position,
			COALESCE(col_description(pc.oid, c.ordinal_position), '')
		FROM information_schema.columns c
		LEFT JOIN pg_namespace n ON n.nspname = c.table_schema
		LEFT JOIN pg_class pc ON pc.relname = c.table_name AND pc.relnamespace = n.oid
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`

	rows, err := pool.Query(ctx, query, ref.Schema, ref.Table)
	if err != nil {
		return nil, classify("list columns", ref.FQN(), err)
	}
	defer rows.Close()

	var cols []datasource.ColumnMetadata
	for rows.Next() {
		var (
			col      datasource.ColumnMetadata
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.OrdinalPosition, &col.Comment); err != nil {
			return nil, classify("scan column metadata", ref.FQN(), err)
		}
		col.IsNullable = strings.EqualFold(nullable, "YES")
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate columns", ref.FQN(), err)
	}
	return cols, nil
}
