package types

// CleanupTask is one blob path waiting for physical deletion. Rows are written
// in the same transaction as a force delete and drained best-effort afterwards;
// whatever survives a crash is retried by the sweep process.
type CleanupTask struct {
	ObjectPath string `json:"object_path" db:"object_path"`
	CreatedAt  int64  `json:"created_at" db:"created_at"`
}
