package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-adp-api/internal/models"
)

// SchemaIntrospector discovers foreign key columns referencing a given
// table column. Taking a QueryerContext lets callers run the discovery
// inside an open transaction so the schema snapshot and the writes that
// depend on it share one consistent view.
type SchemaIntrospector interface {
	ReferencesTo(ctx context.Context, q sqlx.QueryerContext, table, column string) ([]models.ForeignKeyRef, error)
}

// PgSchemaIntrospector reads foreign key metadata from the PostgreSQL
// information_schema. No caching: migrations can add referencing tables at
// any time, and a stale answer here would orphan rows, so the catalog is
// consulted on every call.
type PgSchemaIntrospector struct{}

// NewPgSchemaIntrospector constructs the introspector.
func NewPgSchemaIntrospector() *PgSchemaIntrospector {
	return &PgSchemaIntrospector{}
}

const referencesToQuery = `
SELECT
	tc.table_name AS table_name,
	kcu.column_name AS column_name,
	rc.delete_rule AS delete_rule
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_name = tc.constraint_name
	AND kcu.constraint_schema = tc.constraint_schema
JOIN information_schema.constraint_column_usage ccu
	ON ccu.constraint_name = tc.constraint_name
	AND ccu.constraint_schema = tc.constraint_schema
JOIN information_schema.referential_constraints rc
	ON rc.constraint_name = tc.constraint_name
	AND rc.constraint_schema = tc.constraint_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
	AND tc.table_schema = 'public'
	AND ccu.table_name = $1
	AND ccu.column_name = $2
ORDER BY tc.table_name, kcu.column_name`

// ReferencesTo lists every foreign key column in the public schema that
// points at table.column, with its declared ON DELETE rule.
func (i *PgSchemaIntrospector) ReferencesTo(ctx context.Context, q sqlx.QueryerContext, table, column string) ([]models.ForeignKeyRef, error) {
	var refs []models.ForeignKeyRef
	if err := sqlx.SelectContext(ctx, q, &refs, referencesToQuery, table, column); err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}
	return refs, nil
}
