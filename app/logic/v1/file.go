package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/samber/lo"

	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/i18n"
	"github.com/filecab/filecab/pkg/types"
)

// FileLogic reads files through the virtual tree address space and resolves
// download urls.
type FileLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewFileLogic(ctx context.Context, core *core.Core) *FileLogic {
	return &FileLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// List pages through files addressed by virtual path segments:
//
//	[]                                  every visible file
//	["Uncategorized"]                   files without any active link
//	[recordType, recordID]              files attached to one record
//	[recordType, recordID, category]    narrowed to one category
//
// A bare record type names a branch, not a file set, so it yields an empty
// page rather than an error.
func (l *FileLogic) List(pathSegments []string, keywords string, page, pageSize uint64) ([]types.File, int64, error) {
	opts := types.ListFileOptions{
		Keywords: keywords,
	}

	claims := l.GetUserInfo()
	if !l.core.Srv().RBAC().CanViewAll(claims.Role) {
		opts.VisibleTo = claims.User
	}

	switch len(pathSegments) {
	case 0:
	case 1:
		if pathSegments[0] != types.RECORD_TYPE_UNCATEGORIZED {
			return []types.File{}, 0, nil
		}
		opts.Unlinked = true
	case 2, 3:
		if pathSegments[0] == types.RECORD_TYPE_UNCATEGORIZED {
			return nil, 0, errors.New("FileLogic.List", i18n.ERROR_AMBIGUOUS_LOCATION, nil).Code(http.StatusBadRequest)
		}
		opts.RecordType = pathSegments[0]
		opts.RecordID = pathSegments[1]
		if len(pathSegments) == 3 {
			opts.Category = pathSegments[2]
		}
	default:
		return nil, 0, errors.New("FileLogic.List", i18n.ERROR_AMBIGUOUS_LOCATION, nil).Code(http.StatusBadRequest)
	}

	files, err := l.core.Store().FileStore().List(l.ctx, opts, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, 0, errors.New("FileLogic.List.FileStore.List", i18n.ERROR_INTERNAL, err)
	}

	total, err := l.core.Store().FileStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("FileLogic.List.FileStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return files, total, nil
}

// GetFile returns an active file after the visibility check: public files
// are open, private ones require the uploader or an admin, and a role
// allow-list on the file narrows access further.
func (l *FileLogic) GetFile(id string) (*types.File, error) {
	file, err := l.core.Store().FileStore().Get(l.ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("FileLogic.GetFile.FileStore.Get", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("FileLogic.GetFile.FileStore.Get", i18n.ERROR_INTERNAL, err)
	}

	if !l.canView(*file) {
		return nil, errors.New("FileLogic.GetFile", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}
	return file, nil
}

// GetDownloadURL resolves a short-lived presigned url for a file's object.
func (l *FileLogic) GetDownloadURL(id string) (string, error) {
	file, err := l.GetFile(id)
	if err != nil {
		return "", err
	}

	storage := l.core.FileStorage()
	if storage == nil {
		return "", errors.New("FileLogic.GetDownloadURL.FileStorage", i18n.ERROR_INTERNAL, nil)
	}

	url, err := storage.GenGetObjectPreSignURL(file.ObjectPath)
	if err != nil {
		return "", errors.New("FileLogic.GetDownloadURL.FileStorage.GenGetObjectPreSignURL", i18n.ERROR_INTERNAL, err)
	}
	return url, nil
}

func (l *FileLogic) canView(file types.File) bool {
	claims := l.GetUserInfo()
	if l.core.Srv().RBAC().CanViewAll(claims.Role) {
		return true
	}
	if roles := file.RoleList(); len(roles) > 0 && !lo.Contains(roles, claims.Role) {
		return false
	}
	if file.Visibility == types.FILE_VISIBILITY_PUBLIC {
		return true
	}
	return file.UploaderID == claims.User
}
