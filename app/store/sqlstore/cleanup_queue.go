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
		provider.stores.CleanupQueueStore = NewCleanupQueueStore(provider)
	})
}

type CleanupQueueStore struct {
	CommonFields
}

func NewCleanupQueueStore(provider SqlProviderAchieve) *CleanupQueueStore {
	repo := &CleanupQueueStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CLEANUP_QUEUE)
	repo.SetAllColumns("object_path", "created_at")
	return repo
}

// Add 登记待清理的对象路径，与删除动作同一事务写入
func (s *CleanupQueueStore) Add(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	now := time.Now().Unix()
	query := sq.Insert(s.GetTable()).Columns("object_path", "created_at")
	for _, p := range paths {
		query = query.Values(p, now)
	}
	query = query.Suffix("ON CONFLICT (object_path) DO NOTHING")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *CleanupQueueStore) List(ctx context.Context, limit uint64) ([]types.CleanupTask, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at ASC").Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.CleanupTask
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

func (s *CleanupQueueStore) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"object_path": paths})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
