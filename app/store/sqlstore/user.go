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
		provider.stores.UserStore = NewUserStore(provider)
	})
}

type UserStore struct {
	CommonFields
}

func NewUserStore(provider SqlProviderAchieve) *UserStore {
	repo := &UserStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_USER)
	repo.SetAllColumns("id", "name", "email", "avatar", "created_at", "updated_at", "deleted_at")
	return repo
}

// Create 创建新的用户
func (s *UserStore) Create(ctx context.Context, data types.User) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "name", "email", "avatar", "created_at", "updated_at", "deleted_at").
		Values(data.ID, data.Name, data.Email, data.Avatar, data.CreatedAt, data.UpdatedAt, data.DeletedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// GetUser 获取未删除的用户
func (s *UserStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id, "deleted_at": types.NOT_DELETE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.User
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateUserProfile 更新用户信息
func (s *UserStore) UpdateUserProfile(ctx context.Context, id, name, email, avatar string) error {
	query := sq.Update(s.GetTable()).
		Set("name", name).
		Set("email", email).
		Set("avatar", avatar).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *UserStore) ListByIDs(ctx context.Context, ids []string) ([]types.User, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.User
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

// 以下方法将 users 适配为可回收记录类型

func (s *UserStore) getRecord(ctx context.Context, id string, forUpdate bool) (*types.RecyclableRecord, error) {
	query := sq.Select("id", "name", "deleted_at").From(s.GetTable()).Where(sq.Eq{"id": id})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.User
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &types.RecyclableRecord{ID: res.ID, Name: res.Name, DeletedAt: res.DeletedAt}, nil
}

func (s *UserStore) GetRecord(ctx context.Context, id string) (*types.RecyclableRecord, error) {
	return s.getRecord(ctx, id, false)
}

func (s *UserStore) GetRecordForUpdate(ctx context.Context, id string) (*types.RecyclableRecord, error) {
	return s.getRecord(ctx, id, true)
}

func (s *UserStore) SoftDeleteRecord(ctx context.Context, id string) error {
	query := sq.Update(s.GetTable()).Set("deleted_at", time.Now().Unix()).Where(sq.Eq{"id": id, "deleted_at": types.NOT_DELETE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *UserStore) UndeleteRecord(ctx context.Context, id string) error {
	query := sq.Update(s.GetTable()).Set("deleted_at", types.NOT_DELETE).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *UserStore) HardDeleteRecord(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
