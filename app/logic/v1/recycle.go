package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/i18n"
	"github.com/filecab/filecab/pkg/safe"
	"github.com/filecab/filecab/pkg/types"
	"github.com/filecab/filecab/pkg/utils"
)

// RecycleLogic drives the move-to-bin / restore / force-delete state machine.
// Every mutation runs inside one transaction; blob cleanup happens after
// commit and never fails the operation that scheduled it.
type RecycleLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewRecycleLogic(ctx context.Context, core *core.Core) *RecycleLogic {
	return &RecycleLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// rowEvent is one row-change broadcast queued while the transaction is still
// open; it goes out only after commit.
type rowEvent struct {
	subject string
	event   types.RowEvent
	id      string
}

func subjectOfResource(resourceType string) string {
	if resourceType == types.RESOURCE_TYPE_FILES {
		return types.SUBJECT_FILE
	}
	return resourceType
}

func publishRowEvents(c *core.Core, events []rowEvent) {
	for _, ev := range events {
		c.PublishRowChange(ev.subject, ev.event, map[string]any{"id": ev.id})
	}
}

// MoveToBin moves a live resource into the recycle bin together with
// everything it owns. resourceType is either "files" or a registered record
// type name.
func (l *RecycleLogic) MoveToBin(resourceType, resourceID string) error {
	if resourceType == "" || resourceID == "" {
		return errors.New("RecycleLogic.MoveToBin", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	actor := l.GetUserInfo().User
	var events []rowEvent
	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		return l.moveToBinTx(ctx, resourceType, resourceID, actor, make(map[string]bool), &events)
	})
	if err != nil {
		return err
	}

	publishRowEvents(l.core, events)
	return nil
}

// moveToBinTx is the transactional body of MoveToBin. It is also invoked from
// the restore path to displace the current occupant of a single-instance
// slot, sharing the outer transaction; guard breaks displacement cycles
// within one operation.
func (l *RecycleLogic) moveToBinTx(ctx context.Context, resourceType, resourceID, actor string, guard map[string]bool, events *[]rowEvent) error {
	key := resourceType + ":" + resourceID
	if guard[key] {
		return nil
	}
	guard[key] = true

	existing, err := l.core.Store().RecycleBinStore().GetByResource(ctx, resourceType, resourceID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("RecycleLogic.MoveToBin.RecycleBinStore.GetByResource", i18n.ERROR_INTERNAL, err)
	}
	if existing != nil {
		return errors.New("RecycleLogic.MoveToBin.RecycleBinStore.GetByResource", i18n.ERROR_ALREADY_IN_BIN, nil).Code(http.StatusConflict)
	}

	entry := types.RecycleBinEntry{
		ID:           utils.GenUniqIDStr(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		DeletedBy:    actor,
		CreatedAt:    time.Now().Unix(),
	}
	if days := l.core.Cfg().Recycle.RetentionDays; days > 0 {
		entry.ExpiresAt = entry.CreatedAt + int64(days)*86400
	}

	if resourceType == types.RESOURCE_TYPE_FILES {
		if err = l.binFileTx(ctx, resourceID, &entry, events); err != nil {
			return err
		}
	} else {
		if err = l.binRecordTx(ctx, resourceType, resourceID, &entry, events); err != nil {
			return err
		}
	}

	if err = l.core.Store().RecycleBinStore().Create(ctx, entry); err != nil {
		return errors.New("RecycleLogic.MoveToBin.RecycleBinStore.Create", i18n.ERROR_INTERNAL, err)
	}
	*events = append(*events, rowEvent{types.SUBJECT_RECYCLE_BIN, types.ROW_EVENT_CREATED, entry.ID})
	return nil
}

// binFileTx bins a single file: the file row is soft-deleted, its active
// links are destroyed but kept verbatim in the entry metadata so a restore
// can put them back.
func (l *RecycleLogic) binFileTx(ctx context.Context, fileID string, entry *types.RecycleBinEntry, events *[]rowEvent) error {
	file, err := l.core.Store().FileStore().GetAnyForUpdate(ctx, fileID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("RecycleLogic.MoveToBin.FileStore.GetAnyForUpdate", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("RecycleLogic.MoveToBin.FileStore.GetAnyForUpdate", i18n.ERROR_INTERNAL, err)
	}
	if file.IsDeleted() {
		return errors.New("RecycleLogic.MoveToBin.FileStore.GetAnyForUpdate", i18n.ERROR_ALREADY_IN_BIN, nil).Code(http.StatusConflict)
	}

	links, err := l.core.Store().FileLinkStore().ListActiveByFile(ctx, fileID)
	if err != nil {
		return errors.New("RecycleLogic.MoveToBin.FileLinkStore.ListActiveByFile", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Store().FileStore().SoftDelete(ctx, []string{fileID}); err != nil {
		return errors.New("RecycleLogic.MoveToBin.FileStore.SoftDelete", i18n.ERROR_INTERNAL, err)
	}
	*events = append(*events, rowEvent{types.SUBJECT_FILE, types.ROW_EVENT_DELETED, fileID})
	if len(links) > 0 {
		linkIDs := lo.Map(links, func(item types.FileLink, _ int) string { return item.ID })
		if err = l.core.Store().FileLinkStore().HardDelete(ctx, linkIDs); err != nil {
			return errors.New("RecycleLogic.MoveToBin.FileLinkStore.HardDelete", i18n.ERROR_INTERNAL, err)
		}
		for _, id := range linkIDs {
			*events = append(*events, rowEvent{types.SUBJECT_FILE_LINK, types.ROW_EVENT_DELETED, id})
		}
	}

	meta := &types.FileRecycleMeta{
		Path:        file.ObjectPath,
		Size:        file.Size,
		MimeType:    file.MimeType,
		LinksBackup: links,
	}
	if len(links) > 0 {
		meta.Category = links[0].Category
	}
	entry.Name = file.Name
	entry.Metadata = types.RecycleMetadata{File: meta}
	return nil
}

// binRecordTx bins an owning record: the record row is soft-deleted, every
// file attached to it is cascaded into the deleted state and every link is
// destroyed, with ids and pre-images recorded for restore.
func (l *RecycleLogic) binRecordTx(ctx context.Context, recordType, recordID string, entry *types.RecycleBinEntry, events *[]rowEvent) error {
	rs := l.core.RecyclableStore(recordType)
	if rs == nil {
		return errors.New("RecycleLogic.MoveToBin.RecyclableStore", i18n.ERROR_UNKNOWN_RESOURCE, nil).Code(http.StatusBadRequest)
	}

	record, err := rs.GetRecordForUpdate(ctx, recordID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("RecycleLogic.MoveToBin.RecyclableStore.GetRecordForUpdate", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("RecycleLogic.MoveToBin.RecyclableStore.GetRecordForUpdate", i18n.ERROR_INTERNAL, err)
	}
	if record.IsDeleted() {
		return errors.New("RecycleLogic.MoveToBin.RecyclableStore.GetRecordForUpdate", i18n.ERROR_ALREADY_IN_BIN, nil).Code(http.StatusConflict)
	}

	links, err := l.core.Store().FileLinkStore().ListActiveByRecord(ctx, recordID, recordType, "")
	if err != nil {
		return errors.New("RecycleLogic.MoveToBin.FileLinkStore.ListActiveByRecord", i18n.ERROR_INTERNAL, err)
	}

	fileIDs := lo.Uniq(lo.Map(links, func(item types.FileLink, _ int) string { return item.FileID }))
	linkIDs := lo.Map(links, func(item types.FileLink, _ int) string { return item.ID })

	if len(fileIDs) > 0 {
		if err = l.core.Store().FileStore().SoftDelete(ctx, fileIDs); err != nil {
			return errors.New("RecycleLogic.MoveToBin.FileStore.SoftDelete", i18n.ERROR_INTERNAL, err)
		}
		for _, id := range fileIDs {
			*events = append(*events, rowEvent{types.SUBJECT_FILE, types.ROW_EVENT_DELETED, id})
		}
	}
	if len(linkIDs) > 0 {
		if err = l.core.Store().FileLinkStore().HardDelete(ctx, linkIDs); err != nil {
			return errors.New("RecycleLogic.MoveToBin.FileLinkStore.HardDelete", i18n.ERROR_INTERNAL, err)
		}
		for _, id := range linkIDs {
			*events = append(*events, rowEvent{types.SUBJECT_FILE_LINK, types.ROW_EVENT_DELETED, id})
		}
	}
	if err = rs.SoftDeleteRecord(ctx, recordID); err != nil {
		return errors.New("RecycleLogic.MoveToBin.RecyclableStore.SoftDeleteRecord", i18n.ERROR_INTERNAL, err)
	}
	*events = append(*events, rowEvent{subjectOfResource(recordType), types.ROW_EVENT_DELETED, recordID})

	entry.Name = record.Name
	entry.Metadata = types.RecycleMetadata{Record: &types.RecordRecycleMeta{
		LinksBackup: links,
		Cascade: types.CascadeSet{
			Files: fileIDs,
			Links: linkIDs,
		},
	}}
	return nil
}

// Restore brings a binned resource back to its pre-deletion state. Only the
// user who deleted it, or an admin, may restore. If a restored link lands in
// a single-instance slot that is occupied by a different file, the occupant
// is displaced into the bin within the same transaction.
func (l *RecycleLogic) Restore(binID string) error {
	claims := l.GetUserInfo()

	entry, err := l.core.Store().RecycleBinStore().Get(l.ctx, binID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("RecycleLogic.Restore.RecycleBinStore.Get", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("RecycleLogic.Restore.RecycleBinStore.Get", i18n.ERROR_INTERNAL, err)
	}

	if !l.core.Srv().RBAC().CanRestore(claims.User, claims.Role, entry) {
		return errors.New("RecycleLogic.Restore.RBAC.CanRestore", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}

	var events []rowEvent
	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		return l.restoreTx(ctx, entry, claims.User, &events)
	})
	if err != nil {
		return err
	}

	publishRowEvents(l.core, events)
	return nil
}

func (l *RecycleLogic) restoreTx(ctx context.Context, entry *types.RecycleBinEntry, actor string, events *[]rowEvent) error {
	var linksBackup []types.FileLink

	switch {
	case entry.Metadata.File != nil:
		file, err := l.core.Store().FileStore().GetAnyForUpdate(ctx, entry.ResourceID)
		if err != nil {
			if err == sql.ErrNoRows {
				return errors.New("RecycleLogic.Restore.FileStore.GetAnyForUpdate", i18n.ERROR_DATA_LOSS, err).Code(http.StatusInternalServerError)
			}
			return errors.New("RecycleLogic.Restore.FileStore.GetAnyForUpdate", i18n.ERROR_INTERNAL, err)
		}
		if file.IsDeleted() {
			if _, err = l.core.Store().FileStore().Undelete(ctx, []string{entry.ResourceID}); err != nil {
				return errors.New("RecycleLogic.Restore.FileStore.Undelete", i18n.ERROR_INTERNAL, err)
			}
			*events = append(*events, rowEvent{types.SUBJECT_FILE, types.ROW_EVENT_CREATED, entry.ResourceID})
		}
		linksBackup = entry.Metadata.File.LinksBackup

	case entry.Metadata.Record != nil:
		rs := l.core.RecyclableStore(entry.ResourceType)
		if rs == nil {
			return errors.New("RecycleLogic.Restore.RecyclableStore", i18n.ERROR_UNKNOWN_RESOURCE, nil).Code(http.StatusBadRequest)
		}
		if _, err := rs.GetRecordForUpdate(ctx, entry.ResourceID); err != nil {
			if err == sql.ErrNoRows {
				return errors.New("RecycleLogic.Restore.RecyclableStore.GetRecordForUpdate", i18n.ERROR_DATA_LOSS, err).Code(http.StatusInternalServerError)
			}
			return errors.New("RecycleLogic.Restore.RecyclableStore.GetRecordForUpdate", i18n.ERROR_INTERNAL, err)
		}
		if err := rs.UndeleteRecord(ctx, entry.ResourceID); err != nil {
			return errors.New("RecycleLogic.Restore.RecyclableStore.UndeleteRecord", i18n.ERROR_INTERNAL, err)
		}
		*events = append(*events, rowEvent{subjectOfResource(entry.ResourceType), types.ROW_EVENT_CREATED, entry.ResourceID})
		// cascaded files must all come back; anything missing means the
		// snapshot no longer matches reality and the restore cannot be trusted
		if cascade := entry.Metadata.Record.Cascade.Files; len(cascade) > 0 {
			affected, err := l.core.Store().FileStore().Undelete(ctx, cascade)
			if err != nil {
				return errors.New("RecycleLogic.Restore.FileStore.Undelete", i18n.ERROR_INTERNAL, err)
			}
			if affected != int64(len(cascade)) {
				return errors.New("RecycleLogic.Restore.FileStore.Undelete", i18n.ERROR_DATA_LOSS, nil).Code(http.StatusInternalServerError)
			}
			for _, id := range cascade {
				*events = append(*events, rowEvent{types.SUBJECT_FILE, types.ROW_EVENT_CREATED, id})
			}
		}
		linksBackup = entry.Metadata.Record.LinksBackup

	default:
		return errors.New("RecycleLogic.Restore.Metadata", i18n.ERROR_DATA_LOSS, nil).Code(http.StatusInternalServerError)
	}

	guard := map[string]bool{entry.ResourceType + ":" + entry.ResourceID: true}
	for _, backup := range linksBackup {
		if err := l.restoreLinkTx(ctx, backup, actor, guard, events); err != nil {
			return err
		}
	}

	if err := l.core.Store().RecycleBinStore().Delete(ctx, entry.ID); err != nil {
		return errors.New("RecycleLogic.Restore.RecycleBinStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	*events = append(*events, rowEvent{types.SUBJECT_RECYCLE_BIN, types.ROW_EVENT_DELETED, entry.ID})
	return nil
}

// restoreLinkTx puts one backed-up link back, arbitrating single-instance
// slots first: a duplicate of the same file is dropped, a different occupant
// is displaced into the bin.
func (l *RecycleLogic) restoreLinkTx(ctx context.Context, backup types.FileLink, actor string, guard map[string]bool, events *[]rowEvent) error {
	if l.core.SingleInstance(backup.RecordType, backup.Category) {
		occupants, err := l.core.Store().FileLinkStore().ListActiveByRecord(ctx, backup.RecordID, backup.RecordType, backup.Category)
		if err != nil {
			return errors.New("RecycleLogic.Restore.FileLinkStore.ListActiveByRecord", i18n.ERROR_INTERNAL, err)
		}
		for _, occ := range occupants {
			if occ.ID == backup.ID {
				continue
			}
			if occ.FileID == backup.FileID {
				if err = l.core.Store().FileLinkStore().HardDelete(ctx, []string{occ.ID}); err != nil {
					return errors.New("RecycleLogic.Restore.FileLinkStore.HardDelete", i18n.ERROR_INTERNAL, err)
				}
				*events = append(*events, rowEvent{types.SUBJECT_FILE_LINK, types.ROW_EVENT_DELETED, occ.ID})
				continue
			}
			if err = l.moveToBinTx(ctx, types.RESOURCE_TYPE_FILES, occ.FileID, actor, guard, events); err != nil {
				return errors.Trace("RecycleLogic.Restore.Displace", err)
			}
		}
	}

	existing, err := l.core.Store().FileLinkStore().GetAny(ctx, backup.ID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("RecycleLogic.Restore.FileLinkStore.GetAny", i18n.ERROR_INTERNAL, err)
	}
	if existing != nil {
		if existing.IsDeleted() {
			if err = l.core.Store().FileLinkStore().Undelete(ctx, backup.ID); err != nil {
				return errors.New("RecycleLogic.Restore.FileLinkStore.Undelete", i18n.ERROR_INTERNAL, err)
			}
			*events = append(*events, rowEvent{types.SUBJECT_FILE_LINK, types.ROW_EVENT_CREATED, backup.ID})
		}
		return nil
	}
	if err = l.core.Store().FileLinkStore().Create(ctx, backup); err != nil {
		return errors.New("RecycleLogic.Restore.FileLinkStore.Create", i18n.ERROR_INTERNAL, err)
	}
	*events = append(*events, rowEvent{types.SUBJECT_FILE_LINK, types.ROW_EVENT_CREATED, backup.ID})
	return nil
}

// ForceDelete irreversibly purges a bin entry: database rows go away in one
// transaction, blob deletion is scheduled through the cleanup queue and
// attempted right after commit. Admin only.
func (l *RecycleLogic) ForceDelete(binID string) error {
	claims := l.GetUserInfo()

	entry, err := l.core.Store().RecycleBinStore().Get(l.ctx, binID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("RecycleLogic.ForceDelete.RecycleBinStore.Get", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("RecycleLogic.ForceDelete.RecycleBinStore.Get", i18n.ERROR_INTERNAL, err)
	}

	if !l.core.Srv().RBAC().CanForceDelete(claims.Role) {
		return errors.New("RecycleLogic.ForceDelete.RBAC.CanForceDelete", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}

	return l.forceDeleteEntry(entry)
}

// forceDeleteEntry does the purge without an authorization check; the expiry
// sweep calls it directly.
func (l *RecycleLogic) forceDeleteEntry(entry *types.RecycleBinEntry) error {
	var paths []string

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		switch {
		case entry.Metadata.File != nil:
			if entry.Metadata.File.Path != "" {
				paths = append(paths, entry.Metadata.File.Path)
			}
			if err := l.core.Store().FileStore().HardDelete(ctx, []string{entry.ResourceID}); err != nil {
				return errors.New("RecycleLogic.ForceDelete.FileStore.HardDelete", i18n.ERROR_INTERNAL, err)
			}
			// links detached before the file was binned are not in the
			// snapshot; purge by owner so no orphan rows survive
			if err := l.core.Store().FileLinkStore().HardDeleteByFile(ctx, entry.ResourceID); err != nil {
				return errors.New("RecycleLogic.ForceDelete.FileLinkStore.HardDeleteByFile", i18n.ERROR_INTERNAL, err)
			}

		case entry.Metadata.Record != nil:
			rs := l.core.RecyclableStore(entry.ResourceType)
			if rs == nil {
				return errors.New("RecycleLogic.ForceDelete.RecyclableStore", i18n.ERROR_UNKNOWN_RESOURCE, nil).Code(http.StatusBadRequest)
			}
			if err := rs.HardDeleteRecord(ctx, entry.ResourceID); err != nil {
				return errors.New("RecycleLogic.ForceDelete.RecyclableStore.HardDeleteRecord", i18n.ERROR_INTERNAL, err)
			}
			if cascade := entry.Metadata.Record.Cascade.Files; len(cascade) > 0 {
				files, err := l.core.Store().FileStore().ListByIDs(ctx, cascade, true)
				if err != nil {
					return errors.New("RecycleLogic.ForceDelete.FileStore.ListByIDs", i18n.ERROR_INTERNAL, err)
				}
				for _, f := range files {
					if f.ObjectPath != "" {
						paths = append(paths, f.ObjectPath)
					}
				}
				if err = l.core.Store().FileStore().HardDelete(ctx, cascade); err != nil {
					return errors.New("RecycleLogic.ForceDelete.FileStore.HardDelete", i18n.ERROR_INTERNAL, err)
				}
				for _, fileID := range cascade {
					if err = l.core.Store().FileLinkStore().HardDeleteByFile(ctx, fileID); err != nil {
						return errors.New("RecycleLogic.ForceDelete.FileLinkStore.HardDeleteByFile", i18n.ERROR_INTERNAL, err)
					}
				}
			}
			if err := l.core.Store().FileLinkStore().HardDeleteByRecord(ctx, entry.ResourceID, entry.ResourceType); err != nil {
				return errors.New("RecycleLogic.ForceDelete.FileLinkStore.HardDeleteByRecord", i18n.ERROR_INTERNAL, err)
			}

		default:
			return errors.New("RecycleLogic.ForceDelete.Metadata", i18n.ERROR_DATA_LOSS, nil).Code(http.StatusInternalServerError)
		}

		if len(paths) > 0 {
			if err := l.core.Store().CleanupQueueStore().Add(ctx, paths); err != nil {
				return errors.New("RecycleLogic.ForceDelete.CleanupQueueStore.Add", i18n.ERROR_INTERNAL, err)
			}
		}
		if err := l.core.Store().RecycleBinStore().Delete(ctx, entry.ID); err != nil {
			return errors.New("RecycleLogic.ForceDelete.RecycleBinStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(paths) > 0 {
		safe.Run(func() {
			l.cleanupObjects(paths)
		})
	}
	l.core.PublishRowChange(types.SUBJECT_RECYCLE_BIN, types.ROW_EVENT_DELETED, map[string]any{"id": entry.ID})
	return nil
}

// cleanupObjects unlinks blobs best-effort. Failures stay in the cleanup
// queue for the sweep to retry; only successes are acknowledged.
func (l *RecycleLogic) cleanupObjects(paths []string) {
	storage := l.core.FileStorage()
	if storage == nil {
		return
	}

	var done []string
	for _, p := range paths {
		if err := storage.DeleteObject(context.Background(), p); err != nil {
			slog.Warn("object cleanup failed, left for sweep", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		done = append(done, p)
	}
	if len(done) == 0 {
		return
	}
	if err := l.core.Store().CleanupQueueStore().Remove(context.Background(), done); err != nil {
		slog.Warn("failed to ack cleaned objects", slog.String("error", err.Error()))
	}
}

// ListBinEntries pages through the recycle bin. Non-admin callers only see
// their own deletions.
func (l *RecycleLogic) ListBinEntries(opts types.ListRecycleBinOptions, page, pageSize uint64) ([]types.RecycleBinEntry, int64, error) {
	claims := l.GetUserInfo()
	if !l.core.Srv().RBAC().CanViewAll(claims.Role) {
		opts.DeletedBy = claims.User
	}

	list, err := l.core.Store().RecycleBinStore().List(l.ctx, opts, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, 0, errors.New("RecycleLogic.ListBinEntries.RecycleBinStore.List", i18n.ERROR_INTERNAL, err)
	}

	total, err := l.core.Store().RecycleBinStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("RecycleLogic.ListBinEntries.RecycleBinStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return list, total, nil
}

// PurgeExpired force-deletes every entry past its expiry. Returns how many
// entries were purged; individual failures are logged and skipped so one bad
// entry cannot stall the sweep.
func (l *RecycleLogic) PurgeExpired(limit uint64) (int, error) {
	expired, err := l.core.Store().RecycleBinStore().ListExpired(l.ctx, time.Now().Unix(), limit)
	if err != nil && err != sql.ErrNoRows {
		return 0, errors.New("RecycleLogic.PurgeExpired.RecycleBinStore.ListExpired", i18n.ERROR_INTERNAL, err)
	}

	purged := 0
	for i := range expired {
		if err := l.forceDeleteEntry(&expired[i]); err != nil {
			slog.Error("failed to purge expired bin entry", slog.String("id", expired[i].ID), slog.String("error", err.Error()))
			continue
		}
		purged++
	}
	return purged, nil
}

// RetryCleanup drains pending object deletions left behind by earlier
// force-deletes whose post-commit cleanup failed.
func (l *RecycleLogic) RetryCleanup(limit uint64) error {
	tasks, err := l.core.Store().CleanupQueueStore().List(l.ctx, limit)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("RecycleLogic.RetryCleanup.CleanupQueueStore.List", i18n.ERROR_INTERNAL, err)
	}
	if len(tasks) == 0 {
		return nil
	}

	paths := lo.Map(tasks, func(item types.CleanupTask, _ int) string { return item.ObjectPath })
	l.cleanupObjects(paths)
	return nil
}
