package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/i18n"
	"github.com/filecab/filecab/pkg/types"
	"github.com/filecab/filecab/pkg/utils"
)

// 默认单文件上限 30MB
const defaultMaxFileSize = 30 * 1024 * 1024

// UploadLogic registers file rows and hands out presigned upload urls.
// Clients push bytes straight to object storage; this service never proxies
// file content.
type UploadLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewUploadLogic(ctx context.Context, core *core.Core) *UploadLogic {
	return &UploadLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type UploadKey struct {
	FileID       string `json:"file_id"`
	Key          string `json:"key"`
	FullPath     string `json:"full_path"`
	StaticDomain string `json:"static_domain"`
}

// GenClientUploadKey records the file and returns a presigned PUT url for the
// client to push bytes with. The row is created up front so the file is
// addressable the moment the upload finishes.
func (l *UploadLogic) GenClientUploadKey(fileName, mimeType string, size int64, visibility string) (UploadKey, error) {
	if fileName == "" || size <= 0 {
		return UploadKey{}, errors.New("UploadLogic.GenClientUploadKey", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	maxSize := l.core.Cfg().Attach.MaxFileSize
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}
	if size > maxSize {
		return UploadKey{}, errors.New("UploadLogic.GenClientUploadKey", i18n.ERROR_MORE_THAN_MAX, nil).Code(http.StatusForbidden)
	}

	switch visibility {
	case "":
		visibility = types.FILE_VISIBILITY_PRIVATE
	case types.FILE_VISIBILITY_PUBLIC, types.FILE_VISIBILITY_PRIVATE:
	default:
		return UploadKey{}, errors.New("UploadLogic.GenClientUploadKey", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	storage := l.core.FileStorage()
	if storage == nil {
		return UploadKey{}, errors.New("UploadLogic.GenClientUploadKey.FileStorage", i18n.ERROR_INTERNAL, nil)
	}

	claims := l.GetUserInfo()
	fileID := utils.GenUniqIDStr()
	objectPath := types.GenObjectPath(claims.User, fileID, fileName)

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().FileStore().Create(ctx, types.File{
			ID:         fileID,
			Name:       fileName,
			MimeType:   mimeType,
			Size:       size,
			ObjectPath: objectPath,
			Visibility: visibility,
			UploaderID: claims.User,
			CreatedAt:  time.Now().Unix(),
		}); err != nil {
			return errors.New("UploadLogic.GenClientUploadKey.FileStore.Create", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return UploadKey{}, err
	}

	uploadURL, err := storage.GenUploadObjectPreSignURL(objectPath)
	if err != nil {
		return UploadKey{}, errors.New("UploadLogic.GenClientUploadKey.FileStorage.GenUploadObjectPreSignURL", i18n.ERROR_INTERNAL, err)
	}

	l.core.PublishRowChange(types.SUBJECT_FILE, types.ROW_EVENT_CREATED, map[string]any{"id": fileID})
	return UploadKey{
		FileID:       fileID,
		Key:          uploadURL,
		FullPath:     objectPath,
		StaticDomain: storage.GetStaticDomain(),
	}, nil
}
