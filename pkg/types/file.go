package types

import (
	"path"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const (
	FILE_VISIBILITY_PUBLIC  = "public"
	FILE_VISIBILITY_PRIVATE = "private"
)

type File struct {
	ID         string `json:"id" db:"id"`                   // 文件唯一标识，snowflake，可排序
	Name       string `json:"name" db:"name"`               // 原始文件名
	MimeType   string `json:"mime_type" db:"mime_type"`     // MIME 类型
	Size       int64  `json:"size" db:"size"`               // 文件大小，单位为字节
	ObjectPath string `json:"object_path" db:"object_path"` // 对象存储路径，本服务只记录不解释
	Visibility string `json:"visibility" db:"visibility"`   // public / private
	Roles      string `json:"roles" db:"roles"`             // 可选角色白名单，逗号分隔，空表示不限制
	UploaderID string `json:"uploader_id" db:"uploader_id"` // 上传者
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	DeletedAt  int64  `json:"deleted_at" db:"deleted_at"` // 0 表示未删除
}

func (f File) IsDeleted() bool {
	return f.DeletedAt != NOT_DELETE
}

// GenObjectPath builds the object storage key for a fresh upload. The
// original file name only contributes its extension; the snowflake id keeps
// keys unique and sortable.
func GenObjectPath(uploaderID, fileID, fileName string) string {
	return "/files/" + uploaderID + "/" + fileID + strings.ToLower(path.Ext(fileName))
}

func (f File) RoleList() []string {
	if f.Roles == "" {
		return nil
	}
	return strings.Split(f.Roles, ",")
}

type ListFileOptions struct {
	IDs        []string
	UploaderID string
	Keywords   string
	// Unlinked selects files without any active link ("Uncategorized").
	Unlinked bool
	// Slot narrows files to those attached to a record, optionally one category.
	RecordID   string
	RecordType string
	Category   string
	// VisibleTo applies the owner-or-public predicate for a non-elevated viewer.
	VisibleTo string
	// IncludeDeleted keeps soft-deleted rows in the result set.
	IncludeDeleted bool
}

func (opts ListFileOptions) Apply(query *sq.SelectBuilder) {
	if len(opts.IDs) > 0 {
		*query = query.Where(sq.Eq{"id": opts.IDs})
	}
	if opts.UploaderID != "" {
		*query = query.Where(sq.Eq{"uploader_id": opts.UploaderID})
	}
	if opts.Keywords != "" {
		*query = query.Where(sq.ILike{"name": "%" + opts.Keywords + "%"})
	}
	if !opts.IncludeDeleted {
		*query = query.Where(sq.Eq{"deleted_at": NOT_DELETE})
	}
	if opts.Unlinked {
		*query = query.Where("NOT EXISTS (SELECT 1 FROM " + TABLE_FILE_LINK.Name() + " l WHERE l.file_id = " + TABLE_FILE.Name() + ".id AND l.deleted_at = 0)")
	}
	if opts.RecordType != "" && opts.RecordID != "" {
		cond := "EXISTS (SELECT 1 FROM " + TABLE_FILE_LINK.Name() + " l WHERE l.file_id = " + TABLE_FILE.Name() + ".id AND l.deleted_at = 0 AND l.record_id = ? AND l.record_type = ?"
		args := []interface{}{opts.RecordID, opts.RecordType}
		if opts.Category != "" {
			cond += " AND l.category = ?"
			args = append(args, opts.Category)
		}
		cond += ")"
		*query = query.Where(sq.Expr(cond, args...))
	}
	if opts.VisibleTo != "" {
		*query = query.Where(sq.Or{
			sq.Eq{"visibility": FILE_VISIBILITY_PUBLIC},
			sq.Eq{"uploader_id": opts.VisibleTo},
		})
	}
}
