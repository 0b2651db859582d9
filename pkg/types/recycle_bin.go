package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// RecycleBinEntry is the reversal record written atomically with a deletion.
// A live resource and its bin entry are mutually exclusive: the entry exists
// exactly while the resource sits in the bin.
type RecycleBinEntry struct {
	ID           string          `json:"id" db:"id"`
	ResourceType string          `json:"resource_type" db:"resource_type"` // RESOURCE_TYPE_FILES 或记录类型名，例如 "users"
	ResourceID   string          `json:"resource_id" db:"resource_id"`
	Name         string          `json:"name" db:"name"` // 删除时的展示名快照
	DeletedBy    string          `json:"deleted_by" db:"deleted_by"`
	CreatedAt    int64           `json:"created_at" db:"created_at"`
	ExpiresAt    int64           `json:"expires_at" db:"expires_at"`
	Metadata     RecycleMetadata `json:"metadata" db:"metadata"`
}

// RecycleMetadata is a discriminated snapshot: exactly one branch is set,
// matching the entry's resource type. Keeping the two shapes apart lets the
// restore path switch exhaustively instead of probing a loose map.
type RecycleMetadata struct {
	File   *FileRecycleMeta   `json:"file,omitempty"`
	Record *RecordRecycleMeta `json:"record,omitempty"`
}

// FileRecycleMeta describes a binned file: bookkeeping for eventual disk
// cleanup plus the pre-image of the links that pointed at it.
type FileRecycleMeta struct {
	Path        string     `json:"path"`
	Size        int64      `json:"size"`
	MimeType    string     `json:"mime_type"`
	Category    string     `json:"category,omitempty"` // 被删除时所处的分类（取首个有效链接）
	LinksBackup []FileLink `json:"links_backup,omitempty"`
}

// RecordRecycleMeta describes a binned owning record and everything that was
// cascaded away with it.
type RecordRecycleMeta struct {
	LinksBackup []FileLink `json:"links_backup,omitempty"`
	Cascade     CascadeSet `json:"cascade"`
}

type CascadeSet struct {
	Files []string `json:"files"`
	Links []string `json:"links"`
}

func (m RecycleMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *RecycleMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = RecycleMetadata{}
		return nil
	default:
		return fmt.Errorf("unsupported recycle metadata column type %T", value)
	}
}

type ListRecycleBinOptions struct {
	DeletedBy    string
	ResourceType string
	Keywords     string
}

func (opts ListRecycleBinOptions) Apply(query *sq.SelectBuilder) {
	if opts.DeletedBy != "" {
		*query = query.Where(sq.Eq{"deleted_by": opts.DeletedBy})
	}
	if opts.ResourceType != "" {
		*query = query.Where(sq.Eq{"resource_type": opts.ResourceType})
	}
	if opts.Keywords != "" {
		*query = query.Where(sq.ILike{"name": "%" + opts.Keywords + "%"})
	}
}

// RecyclableRecord is the slim view of an owning record the recycle engine
// works with, whatever its concrete entity type.
type RecyclableRecord struct {
	ID        string
	Name      string
	DeletedAt int64
}

func (r RecyclableRecord) IsDeleted() bool {
	return r.DeletedAt != NOT_DELETE
}
