package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/i18n"
	"github.com/filecab/filecab/pkg/types"
	"github.com/filecab/filecab/pkg/utils"
)

// AttachmentLogic manages the links between files and the records that own
// them.
type AttachmentLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewAttachmentLogic(ctx context.Context, core *core.Core) *AttachmentLogic {
	return &AttachmentLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func (l *AttachmentLogic) IsSingleInstance(recordType, category string) bool {
	return l.core.SingleInstance(recordType, category)
}

// Attach links a file to a record under a category. For a single-instance
// slot the current occupant, if any, is displaced into the recycle bin
// inside the same transaction; for multi-instance slots a duplicate of the
// exact tuple is a conflict.
func (l *AttachmentLogic) Attach(fileID, recordID, recordType, category string) (*types.FileLink, error) {
	if fileID == "" || recordID == "" || recordType == "" || category == "" {
		return nil, errors.New("AttachmentLogic.Attach", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	claims := l.GetUserInfo()

	file, err := l.core.Store().FileStore().Get(l.ctx, fileID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("AttachmentLogic.Attach.FileStore.Get", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("AttachmentLogic.Attach.FileStore.Get", i18n.ERROR_INTERNAL, err)
	}

	var (
		link   *types.FileLink
		events []rowEvent
	)
	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if l.core.SingleInstance(recordType, category) {
			occupants, err := l.core.Store().FileLinkStore().ListActiveByRecord(ctx, recordID, recordType, category)
			if err != nil {
				return errors.New("AttachmentLogic.Attach.FileLinkStore.ListActiveByRecord", i18n.ERROR_INTERNAL, err)
			}
			recycle := NewRecycleLogic(ctx, l.core)
			for _, occ := range occupants {
				if occ.FileID == file.ID {
					return errors.New("AttachmentLogic.Attach.FileLinkStore.ListActiveByRecord", i18n.ERROR_SLOT_OCCUPIED, nil).Code(http.StatusConflict)
				}
				if err = recycle.moveToBinTx(ctx, types.RESOURCE_TYPE_FILES, occ.FileID, claims.User, make(map[string]bool), &events); err != nil {
					return errors.Trace("AttachmentLogic.Attach.Displace", err)
				}
			}
		}

		existing, err := l.core.Store().FileLinkStore().GetByTuple(ctx, fileID, recordID, recordType, category)
		if err != nil && err != sql.ErrNoRows {
			return errors.New("AttachmentLogic.Attach.FileLinkStore.GetByTuple", i18n.ERROR_INTERNAL, err)
		}
		if existing != nil {
			if !existing.IsDeleted() {
				return errors.New("AttachmentLogic.Attach.FileLinkStore.GetByTuple", i18n.ERROR_EXIST, nil).Code(http.StatusConflict)
			}
			// tuple rows are unique across delete states; revive the old row
			// instead of inserting a twin
			if err = l.core.Store().FileLinkStore().Undelete(ctx, existing.ID); err != nil {
				return errors.New("AttachmentLogic.Attach.FileLinkStore.Undelete", i18n.ERROR_INTERNAL, err)
			}
			revived := *existing
			revived.DeletedAt = types.NOT_DELETE
			link = &revived
			return nil
		}

		link = &types.FileLink{
			ID:         utils.GenUniqIDStr(),
			FileID:     fileID,
			RecordID:   recordID,
			RecordType: recordType,
			Category:   category,
			CreatedBy:  claims.User,
			CreatedAt:  time.Now().Unix(),
		}
		if err = l.core.Store().FileLinkStore().Create(ctx, *link); err != nil {
			return errors.New("AttachmentLogic.Attach.FileLinkStore.Create", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishRowEvents(l.core, events)
	l.core.PublishRowChange(types.SUBJECT_FILE_LINK, types.ROW_EVENT_CREATED, link)
	return link, nil
}

// Detach deactivates one link. The file itself stays live; with no remaining
// links it simply becomes uncategorized.
func (l *AttachmentLogic) Detach(linkID string) error {
	link, err := l.core.Store().FileLinkStore().Get(l.ctx, linkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("AttachmentLogic.Detach.FileLinkStore.Get", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("AttachmentLogic.Detach.FileLinkStore.Get", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Store().FileLinkStore().SoftDelete(l.ctx, link.ID); err != nil {
		return errors.New("AttachmentLogic.Detach.FileLinkStore.SoftDelete", i18n.ERROR_INTERNAL, err)
	}

	l.core.PublishRowChange(types.SUBJECT_FILE_LINK, types.ROW_EVENT_DELETED, map[string]any{"id": link.ID})
	return nil
}

// FindLinks lists the active links owned by a record, optionally narrowed to
// one category.
func (l *AttachmentLogic) FindLinks(recordID, recordType, category string) ([]types.FileLink, error) {
	if recordID == "" || recordType == "" {
		return nil, errors.New("AttachmentLogic.FindLinks", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	links, err := l.core.Store().FileLinkStore().ListActiveByRecord(l.ctx, recordID, recordType, category)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AttachmentLogic.FindLinks.FileLinkStore.ListActiveByRecord", i18n.ERROR_INTERNAL, err)
	}
	return links, nil
}

// FindByFile lists the active links that point at a file.
func (l *AttachmentLogic) FindByFile(fileID string) ([]types.FileLink, error) {
	if fileID == "" {
		return nil, errors.New("AttachmentLogic.FindByFile", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	links, err := l.core.Store().FileLinkStore().ListActiveByFile(l.ctx, fileID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AttachmentLogic.FindByFile.FileLinkStore.ListActiveByFile", i18n.ERROR_INTERNAL, err)
	}
	return links, nil
}
