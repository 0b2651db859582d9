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
		provider.stores.RecycleBinStore = NewRecycleBinStore(provider)
	})
}

type RecycleBinStore struct {
	CommonFields
}

func NewRecycleBinStore(provider SqlProviderAchieve) *RecycleBinStore {
	repo := &RecycleBinStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_RECYCLE_BIN)
	repo.SetAllColumns("id", "resource_type", "resource_id", "name", "deleted_by", "created_at", "expires_at", "metadata")
	return repo
}

// Create 创建回收站条目，与删除动作同一事务写入
func (s *RecycleBinStore) Create(ctx context.Context, data types.RecycleBinEntry) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "resource_type", "resource_id", "name", "deleted_by", "created_at", "expires_at", "metadata").
		Values(data.ID, data.ResourceType, data.ResourceID, data.Name, data.DeletedBy, data.CreatedAt, data.ExpiresAt, data.Metadata)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 根据ID获取回收站条目
func (s *RecycleBinStore) Get(ctx context.Context, id string) (*types.RecycleBinEntry, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.RecycleBinEntry
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByResource 根据资源定位回收站条目，一个资源至多存在一条
func (s *RecycleBinStore) GetByResource(ctx context.Context, resourceType, resourceID string) (*types.RecycleBinEntry, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"resource_type": resourceType, "resource_id": resourceID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.RecycleBinEntry
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete 删除回收站条目（恢复成功或彻底清除后）
func (s *RecycleBinStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// List 分页获取回收站条目
func (s *RecycleBinStore) List(ctx context.Context, opts types.ListRecycleBinOptions, page, pageSize uint64) ([]types.RecycleBinEntry, error) {
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

	var res []types.RecycleBinEntry
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

// Total 获取满足条件的回收站条目总数
func (s *RecycleBinStore) Total(ctx context.Context, opts types.ListRecycleBinOptions) (int64, error) {
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

// ListExpired 获取已过保留期的条目，供清理进程分批处理
func (s *RecycleBinStore) ListExpired(ctx context.Context, before int64, limit uint64) ([]types.RecycleBinEntry, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Gt{"expires_at": 0}).
		Where(sq.LtOrEq{"expires_at": before}).
		OrderBy("expires_at ASC").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.RecycleBinEntry
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}
