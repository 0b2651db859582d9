package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/filecab/filecab/pkg/register"
	"github.com/filecab/filecab/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.FileStore = NewFileStore(provider)
	})
}

type FileStore struct {
	CommonFields
}

func NewFileStore(provider SqlProviderAchieve) *FileStore {
	repo := &FileStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_FILE)
	repo.SetAllColumns("id", "name", "mime_type", "size", "object_path", "visibility", "roles", "uploader_id", "created_at", "deleted_at")
	return repo
}

// Create 创建新的文件记录
func (s *FileStore) Create(ctx context.Context, data types.File) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "name", "mime_type", "size", "object_path", "visibility", "roles", "uploader_id", "created_at", "deleted_at").
		Values(data.ID, data.Name, data.MimeType, data.Size, data.ObjectPath, data.Visibility, data.Roles, data.UploaderID, data.CreatedAt, data.DeletedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 获取未删除的文件记录
func (s *FileStore) Get(ctx context.Context, id string) (*types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id, "deleted_at": types.NOT_DELETE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.File
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAny 获取文件记录，包含已软删除的行
func (s *FileStore) GetAny(ctx context.Context, id string) (*types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.File
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAnyForUpdate 带行锁获取文件记录，需在事务中调用
func (s *FileStore) GetAnyForUpdate(ctx context.Context, id string) (*types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.File
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *FileStore) ListByIDs(ctx context.Context, ids []string, includeDeleted bool) ([]types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": ids})
	if !includeDeleted {
		query = query.Where(sq.Eq{"deleted_at": types.NOT_DELETE})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.File
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// SoftDelete 软删除文件记录
func (s *FileStore) SoftDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := sq.Update(s.GetTable()).Set("deleted_at", time.Now().Unix()).Where(sq.Eq{"id": ids, "deleted_at": types.NOT_DELETE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Undelete 撤销软删除，返回受影响行数供上层校验快照完整性
func (s *FileStore) Undelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := sq.Update(s.GetTable()).Set("deleted_at", types.NOT_DELETE).Where(sq.Eq{"id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	result, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// HardDelete 物理删除文件记录
func (s *FileStore) HardDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// List 分页获取文件记录
func (s *FileStore) List(ctx context.Context, opts types.ListFileOptions, page, pageSize uint64) ([]types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("id DESC")
	opts.Apply(&query)

	if page != types.NO_PAGINATION || pageSize != types.NO_PAGINATION {
		offset := (page - 1) * pageSize
		query = query.Limit(pageSize).Offset(offset)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.File
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

// Total 获取满足条件的文件总数
func (s *FileStore) Total(ctx context.Context, opts types.ListFileOptions) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
