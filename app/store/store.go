package store

import (
	"context"

	"github.com/filecab/filecab/pkg/sqlstore"
	"github.com/filecab/filecab/pkg/types"
)

// Store aggregates every repository plus transaction control. The sql-backed
// provider is the production implementation; tests swap in memory fakes.
type Store interface {
	Transaction(ctx context.Context, next func(ctx context.Context) error) error
	FileStore() FileStore
	FileLinkStore() FileLinkStore
	RecycleBinStore() RecycleBinStore
	UserStore() UserStore
	CleanupQueueStore() CleanupQueueStore
}

// FileStore 定义文件记录的存储操作
type FileStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.File) error
	// Get returns an active file only.
	Get(ctx context.Context, id string) (*types.File, error)
	// GetAny returns the row regardless of soft-delete state.
	GetAny(ctx context.Context, id string) (*types.File, error)
	// GetAnyForUpdate locks the row for the duration of the surrounding transaction.
	GetAnyForUpdate(ctx context.Context, id string) (*types.File, error)
	ListByIDs(ctx context.Context, ids []string, includeDeleted bool) ([]types.File, error)
	SoftDelete(ctx context.Context, ids []string) error
	// Undelete clears deleted_at and reports how many rows it touched, so the
	// caller can tell a vanished row from a restored one.
	Undelete(ctx context.Context, ids []string) (int64, error)
	HardDelete(ctx context.Context, ids []string) error
	List(ctx context.Context, opts types.ListFileOptions, page, pageSize uint64) ([]types.File, error)
	Total(ctx context.Context, opts types.ListFileOptions) (int64, error)
}

// FileLinkStore 定义附件关联的存储操作
type FileLinkStore interface {
	sqlstore.SqlCommons
	// Create inserts the row exactly as given, including id and created_at, so
	// a restore can recreate a destroyed link verbatim.
	Create(ctx context.Context, data types.FileLink) error
	Get(ctx context.Context, id string) (*types.FileLink, error)
	GetAny(ctx context.Context, id string) (*types.FileLink, error)
	// GetByTuple looks the full attachment tuple up across live and deleted rows.
	GetByTuple(ctx context.Context, fileID, recordID, recordType, category string) (*types.FileLink, error)
	// ListActiveByRecord lists active links owned by a record, optionally
	// narrowed to one category.
	ListActiveByRecord(ctx context.Context, recordID, recordType, category string) ([]types.FileLink, error)
	ListActiveByFile(ctx context.Context, fileID string) ([]types.FileLink, error)
	GroupActiveSlots(ctx context.Context) ([]types.SlotGroup, error)
	SoftDelete(ctx context.Context, id string) error
	Undelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, ids []string) error
	// HardDeleteByFile and HardDeleteByRecord purge every link row owned by a
	// file or record regardless of soft-delete state; a force delete of the
	// owner must leave no link rows behind.
	HardDeleteByFile(ctx context.Context, fileID string) error
	HardDeleteByRecord(ctx context.Context, recordID, recordType string) error
}

// RecycleBinStore 定义回收站条目的存储操作
type RecycleBinStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.RecycleBinEntry) error
	Get(ctx context.Context, id string) (*types.RecycleBinEntry, error)
	GetByResource(ctx context.Context, resourceType, resourceID string) (*types.RecycleBinEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts types.ListRecycleBinOptions, page, pageSize uint64) ([]types.RecycleBinEntry, error)
	Total(ctx context.Context, opts types.ListRecycleBinOptions) (int64, error)
	ListExpired(ctx context.Context, before int64, limit uint64) ([]types.RecycleBinEntry, error)
}

// RecyclableStore is what an entity store must provide for its record type to
// take part in recycle bin operations. Concrete stores (users today) adapt
// their own rows into the slim RecyclableRecord view.
type RecyclableStore interface {
	GetRecord(ctx context.Context, id string) (*types.RecyclableRecord, error)
	GetRecordForUpdate(ctx context.Context, id string) (*types.RecyclableRecord, error)
	SoftDeleteRecord(ctx context.Context, id string) error
	UndeleteRecord(ctx context.Context, id string) error
	HardDeleteRecord(ctx context.Context, id string) error
}

// UserStore 定义用户的存储操作，users 同时作为一种可回收记录类型注册
type UserStore interface {
	sqlstore.SqlCommons
	RecyclableStore
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	UpdateUserProfile(ctx context.Context, id, name, email, avatar string) error
	ListByIDs(ctx context.Context, ids []string) ([]types.User, error)
}

// CleanupQueueStore 定义待物理清理对象路径的存储操作
type CleanupQueueStore interface {
	sqlstore.SqlCommons
	Add(ctx context.Context, paths []string) error
	List(ctx context.Context, limit uint64) ([]types.CleanupTask, error)
	Remove(ctx context.Context, paths []string) error
}
