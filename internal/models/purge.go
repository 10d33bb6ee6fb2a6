package models

// ForeignKeyRef describes one foreign-key constraint discovered by schema
// introspection: a column in some table referencing users(id) together with
// the configured ON DELETE rule.
type ForeignKeyRef struct {
	Table      string `db:"table_name"`
	Column     string `db:"column_name"`
	DeleteRule string `db:"delete_rule"`
}

// ReassignedReference records one repointed foreign key inside a purge
// transaction.
type ReassignedReference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Rows   int64  `json:"rows"`
}

// ReassignmentPlan summarises what a user purge repointed before deleting the
// user row. It exists only for the duration of one deletion and its audit
// entry; nothing persists it as state.
type ReassignmentPlan struct {
	TargetID   string                `json:"target_id"`
	FallbackID string                `json:"fallback_id"`
	Reassigned []ReassignedReference `json:"reassigned"`
	TotalRows  int64                 `json:"total_rows"`
}
