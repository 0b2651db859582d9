package types

import "context"

const (
	TREE_NODE_ROOT        = "root"
	TREE_NODE_RECORD_TYPE = "record_type"
	TREE_NODE_RECORD      = "record"
	TREE_NODE_CATEGORY    = "category"
)

// TreeNode is one level of the derived virtual directory view. The tree is a
// pure projection of active links, rebuilt on every call.
type TreeNode struct {
	Label    string      `json:"label"`
	Kind     string      `json:"kind"`
	RecordID string      `json:"record_id,omitempty"`
	Count    int64       `json:"count"`
	Children []*TreeNode `json:"children,omitempty"`
}

// NameResolver maps record ids of one record type to display labels.
// Ids missing from the returned map fall back to a truncated id label.
type NameResolver func(ctx context.Context, ids []string) (map[string]string, error)
