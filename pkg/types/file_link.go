package types

// FileLink attaches a file to an owning record under a named category.
// (record_id, record_type) is an opaque polymorphic reference; there is no
// foreign key behind it, the owner may be any entity kind known to the
// recyclable registry.
type FileLink struct {
	ID         string `json:"id" db:"id"`
	FileID     string `json:"file_id" db:"file_id"`
	RecordID   string `json:"record_id" db:"record_id"`
	RecordType string `json:"record_type" db:"record_type"`
	Category   string `json:"category" db:"category"` // avatar / cover_image / attachment ...
	CreatedBy  string `json:"created_by" db:"created_by"`
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	DeletedAt  int64  `json:"deleted_at" db:"deleted_at"` // 0 表示未删除
}

func (l FileLink) IsDeleted() bool {
	return l.DeletedAt != NOT_DELETE
}

// SlotGroup is one aggregated (record_type, record_id, category) bucket of
// active links, used by the virtual tree projection.
type SlotGroup struct {
	RecordType string `db:"record_type"`
	RecordID   string `db:"record_id"`
	Category   string `db:"category"`
	Total      int64  `db:"total"`
}
