package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// quoteIdent double-quotes an identifier. Callers must have passed it
// through the identifier guard first.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualifiedName(ref models.TableRef) string {
	return quoteIdent(ref.Database) + "." + quoteIdent(ref.Schema) + "." + quoteIdent(ref.Table)
}

// ListTables returns tables (and views when includeViews is set) in the
// given database and schema. Snowflake keeps an INFORMATION_SCHEMA per
// database, so the database name is interpolated after guard screening
// while the schema filter stays a bind parameter.
func (c *Connector) ListTables(ctx context.Context, database, schema string, includeViews bool) ([]datasource.TableMetadata, error) {
	if err := datasource.SafeIdentifier(database); err != nil {
		return nil, err
	}

	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	kinds := []string{"BASE TABLE"}
	if includeViews {
		kinds = append(kinds, "VIEW")
	}

	query := fmt.Sprintf(`
		SELECT table_name, table_type, COALESCE(comment, ''), row_count
		FROM %s.INFORMATION_SCHEMA.TABLES
		WHERE table_schema = ? AND table_type IN (?%s)
		ORDER BY table_name`,
		quoteIdent(database), strings.Repeat(", ?", len(kinds)-1))

	args := make([]any, 0, len(kinds)+1)
	args = append(args, schema)
	for _, k := range kinds {
		args = append(args, k)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list tables", database+"."+schema, err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var (
			name, tableType, comment string
			rowCount                 sql.NullInt64
		)
		if err := rows.Scan(&name, &tableType, &comment, &rowCount); err != nil {
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
		}
		// Views never carry a count; for base tables a NULL means stats
		// are unavailable and the strategist must not trust sampling.
		if meta.Kind == models.TableKindBase && rowCount.Valid {
			count := rowCount.Int64
			meta.RowCount = &count
		}
		tables = append(tables, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate tables", database+"."+schema, err)
	}
	return tables, nil
}

// ListColumns returns a table's columns in ordinal order.
func (c *Connector) ListColumns(ctx context.Context, ref models.TableRef) ([]datasource.ColumnMetadata, error) {
	if err := datasource.SafeIdentifier(ref.Database); err != nil {
		return nil, err
	}

	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT column_name, data_type, is_nullable, ordinal_position, COALESCE(comment, '')
		FROM %s.INFORMATION_SCHEMA.COLUMNS
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`,
		quoteIdent(ref.Database))

	rows, err := db.QueryContext(ctx, query, ref.Schema, ref.Table)
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
