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
		provider.stores.FileLinkStore = NewFileLinkStore(provider)
	})
}

type FileLinkStore struct {
	CommonFields
}

func NewFileLinkStore(provider SqlProviderAchieve) *FileLinkStore {
	repo := &FileLinkStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_FILE_LINK)
	repo.SetAllColumns("id", "file_id", "record_id", "record_type", "category", "created_by", "created_at", "deleted_at")
	return repo
}

// Create 创建附件关联，id 与 created_at 由调用方给定，恢复时原样重建
func (s *FileLinkStore) Create(ctx context.Context, data types.FileLink) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "file_id", "record_id", "record_type", "category", "created_by", "created_at", "deleted_at").
		Values(data.ID, data.FileID, data.RecordID, data.RecordType, data.Category, data.CreatedBy, data.CreatedAt, data.DeletedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 获取未删除的附件关联
func (s *FileLinkStore) Get(ctx context.Context, id string) (*types.FileLink, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id, "deleted_at": types.NOT_DELETE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.FileLink
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAny 获取附件关联，包含已软删除的行
func (s *FileLinkStore) GetAny(ctx context.Context, id string) (*types.FileLink, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.FileLink
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByTuple 按附件四元组查找，包含已软删除的行
func (s *FileLinkStore) GetByTuple(ctx context.Context, fileID, recordID, recordType, category string) (*types.FileLink, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"file_id": fileID, "record_id": recordID, "record_type": recordType, "category": category})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.FileLink
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListActiveByRecord 获取记录持有的有效附件，category 为空时不过滤分类
func (s *FileLinkStore) ListActiveByRecord(ctx context.Context, recordID, recordType, category string) ([]types.FileLink, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"record_id": recordID, "record_type": recordType, "deleted_at": types.NOT_DELETE}).
		OrderBy("id ASC")
	if category != "" {
		query = query.Where(sq.Eq{"category": category})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.FileLink
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

// ListActiveByFile 获取引用某文件的有效附件
func (s *FileLinkStore) ListActiveByFile(ctx context.Context, fileID string) ([]types.FileLink, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"file_id": fileID, "deleted_at": types.NOT_DELETE}).
		OrderBy("id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.FileLink
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

// GroupActiveSlots 按 (record_type, record_id, category) 聚合有效附件
func (s *FileLinkStore) GroupActiveSlots(ctx context.Context) ([]types.SlotGroup, error) {
	query := sq.Select("record_type", "record_id", "category", "COUNT(*) AS total").
		From(s.GetTable()).
		Where(sq.Eq{"deleted_at": types.NOT_DELETE}).
		GroupBy("record_type", "record_id", "category").
		OrderBy("record_type ASC", "record_id ASC", "category ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.SlotGroup
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return res, nil
}

// SoftDelete 软删除附件关联
func (s *FileLinkStore) SoftDelete(ctx context.Context, id string) error {
	query := sq.Update(s.GetTable()).Set("deleted_at", time.Now().Unix()).Where(sq.Eq{"id": id, "deleted_at": types.NOT_DELETE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Undelete 原地撤销附件关联的软删除，保持行ID不变
func (s *FileLinkStore) Undelete(ctx context.Context, id string) error {
	query := sq.Update(s.GetTable()).Set("deleted_at", types.NOT_DELETE).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// HardDelete 物理删除附件关联
func (s *FileLinkStore) HardDelete(ctx context.Context, ids []string) error {
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

// HardDeleteByFile 物理删除某文件的全部附件关联，含已软删除的行
func (s *FileLinkStore) HardDeleteByFile(ctx context.Context, fileID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"file_id": fileID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// HardDeleteByRecord 物理删除某记录持有的全部附件关联，含已软删除的行
func (s *FileLinkStore) HardDeleteByRecord(ctx context.Context, recordID, recordType string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"record_id": recordID, "record_type": recordType})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
