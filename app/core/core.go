package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/filecab/filecab/app/core/srv"
	"github.com/filecab/filecab/app/store"
	"github.com/filecab/filecab/app/store/sqlstore"
	objectstorage "github.com/filecab/filecab/pkg/object-storage/s3"
	"github.com/filecab/filecab/pkg/safe"
	"github.com/filecab/filecab/pkg/types"
	"github.com/filecab/filecab/pkg/utils"
)

// FileStorage is the blob store boundary. The core never reads or writes
// object bytes itself; it hands out upload urls and requests deletions.
type FileStorage interface {
	GetStaticDomain() string
	GenUploadObjectPreSignURL(objectPath string) (string, error)
	GenGetObjectPreSignURL(objectPath string) (string, error)
	DeleteObject(ctx context.Context, objectPath string) error
}

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores      store.Store
	fileStorage FileStorage
	httpEngine  *gin.Engine

	singleInstance map[string]bool

	mu            sync.RWMutex
	recyclables   map[string]store.RecyclableStore
	nameResolvers map[string]types.NameResolver

	publisher RowChangePublisher
}

// RowChangePublisher receives post-commit row-change notifications.
type RowChangePublisher func(subject string, event types.RowEvent, data any)

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	stores := sqlstore.MustSetup(cfg.Postgres)()

	var storage FileStorage
	if s3cfg := cfg.ObjectStorage.S3; s3cfg != nil {
		storage = objectstorage.NewS3Client(s3cfg.Endpoint, s3cfg.Region, s3cfg.Bucket, cfg.ObjectStorage.StaticDomain, s3cfg.AccessKey, s3cfg.SecretKey)
	}

	core := NewCoreWithDeps(cfg, stores, storage)
	core.srv = srv.SetupSrvs(srv.ApplyTower())
	core.httpEngine = gin.New()

	// users 作为内置的可回收记录类型
	core.RegisterRecyclable(types.RECORD_TYPE_USERS, stores.UserStore())
	core.RegisterNameResolver(types.RECORD_TYPE_USERS, func(ctx context.Context, ids []string) (map[string]string, error) {
		users, err := stores.UserStore().ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		res := make(map[string]string, len(users))
		for _, u := range users {
			res[u.ID] = u.Name
		}
		return res, nil
	})

	return core
}

// NewCoreWithDeps assembles a core around prebuilt collaborators. Production
// goes through MustSetupCore; tests inject fakes here.
func NewCoreWithDeps(cfg CoreConfig, stores store.Store, storage FileStorage) *Core {
	core := &Core{
		cfg:            cfg,
		stores:         stores,
		fileStorage:    storage,
		srv:            srv.SetupSrvs(),
		singleInstance: make(map[string]bool),
		recyclables:    make(map[string]store.RecyclableStore),
		nameResolvers:  make(map[string]types.NameResolver),
	}

	for _, entry := range cfg.Attach.SingleInstance {
		parts := strings.SplitN(entry, "/", 2)
		if len(parts) != 2 {
			continue
		}
		core.singleInstance[parts[0]+"/"+parts[1]] = true
	}

	return core
}

// Install applies the embedded schema migrations when the backing store
// supports it.
func (s *Core) Install() error {
	installer, ok := s.stores.(interface{ Install() error })
	if !ok {
		return nil
	}
	return installer.Install()
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Store() store.Store {
	return s.stores
}

func (s *Core) FileStorage() FileStorage {
	return s.fileStorage
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

// SingleInstance reports whether a record type / category pair is configured
// to hold at most one active attachment per record.
func (s *Core) SingleInstance(recordType, category string) bool {
	return s.singleInstance[recordType+"/"+category]
}

func (s *Core) RegisterRecyclable(recordType string, rs store.RecyclableStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recyclables[recordType] = rs
}

// RecyclableStore resolves the entity store behind a record type name,
// nil when the type was never registered.
func (s *Core) RecyclableStore(recordType string) store.RecyclableStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recyclables[recordType]
}

func (s *Core) RegisterNameResolver(recordType string, resolver types.NameResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nameResolvers[recordType] = resolver
}

func (s *Core) NameResolver(recordType string) types.NameResolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameResolvers[recordType]
}

// SetRowChangePublisher replaces the broadcast sink. Unset, events go through
// the firetower; embedders and tests may intercept them here.
func (s *Core) SetRowChangePublisher(fn RowChangePublisher) {
	s.publisher = fn
}

// PublishRowChange emits a change event for connected clients. Called after
// commit only; a broken broadcast never affects the write it describes.
func (s *Core) PublishRowChange(subject string, event types.RowEvent, data any) {
	if s.publisher != nil {
		safe.Run(func() {
			s.publisher(subject, event, data)
		})
		return
	}
	tower := s.srv.Tower()
	if tower == nil {
		return
	}
	safe.Run(func() {
		if err := tower.PublishRowChange(subject, event, data); err != nil {
			slog.Warn("failed to publish row change", slog.String("subject", subject), slog.String("event", string(event)), slog.String("error", err.Error()))
		}
	})
}
