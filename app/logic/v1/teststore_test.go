package v1_test

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/filecab/filecab/app/store"
	"github.com/filecab/filecab/pkg/types"
)

// memStore is an in-memory store.Store for logic tests. Transaction clones
// the maps up front and restores them when the body fails, so tests can
// assert rollback equivalence; binCreateErr injects a failure into
// RecycleBinStore.Create mid-operation.
type memStore struct {
	mu sync.Mutex

	files map[string]types.File
	links map[string]types.FileLink
	bins  map[string]types.RecycleBinEntry
	users map[string]types.User
	queue map[string]int64

	binCreateErr error
}

func newMemStore() *memStore {
	return &memStore{
		files: make(map[string]types.File),
		links: make(map[string]types.FileLink),
		bins:  make(map[string]types.RecycleBinEntry),
		users: make(map[string]types.User),
		queue: make(map[string]int64),
	}
}

type memTxKey struct{}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Transaction joins an outer transaction when there is one, like the sql
// provider does with its ctx-carried tx.
func (m *memStore) Transaction(ctx context.Context, next func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return next(ctx)
	}

	m.mu.Lock()
	files, links := cloneMap(m.files), cloneMap(m.links)
	bins, users := cloneMap(m.bins), cloneMap(m.users)
	queue := cloneMap(m.queue)
	m.mu.Unlock()

	err := next(context.WithValue(ctx, memTxKey{}, true))
	if err != nil {
		m.mu.Lock()
		m.files, m.links, m.bins, m.users, m.queue = files, links, bins, users, queue
		m.mu.Unlock()
	}
	return err
}

func (m *memStore) FileStore() store.FileStore               { return &memFileStore{m} }
func (m *memStore) FileLinkStore() store.FileLinkStore       { return &memFileLinkStore{m} }
func (m *memStore) RecycleBinStore() store.RecycleBinStore   { return &memRecycleBinStore{m} }
func (m *memStore) UserStore() store.UserStore               { return &memUserStore{m} }
func (m *memStore) CleanupQueueStore() store.CleanupQueueStore { return &memCleanupQueueStore{m} }

type memFileStore struct{ m *memStore }

func (s *memFileStore) GetTable(...interface{}) string { return types.TABLE_FILE.Name() }

func (s *memFileStore) Create(_ context.Context, data types.File) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.files[data.ID] = data
	return nil
}

func (s *memFileStore) Get(_ context.Context, id string) (*types.File, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.files[id]
	if !ok || f.IsDeleted() {
		return nil, sql.ErrNoRows
	}
	return &f, nil
}

func (s *memFileStore) GetAny(_ context.Context, id string) (*types.File, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.files[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &f, nil
}

func (s *memFileStore) GetAnyForUpdate(ctx context.Context, id string) (*types.File, error) {
	return s.GetAny(ctx, id)
}

func (s *memFileStore) ListByIDs(_ context.Context, ids []string, includeDeleted bool) ([]types.File, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.File
	for _, id := range ids {
		f, ok := s.m.files[id]
		if !ok || (!includeDeleted && f.IsDeleted()) {
			continue
		}
		res = append(res, f)
	}
	return res, nil
}

func (s *memFileStore) SoftDelete(_ context.Context, ids []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := time.Now().Unix()
	for _, id := range ids {
		if f, ok := s.m.files[id]; ok && !f.IsDeleted() {
			f.DeletedAt = now
			s.m.files[id] = f
		}
	}
	return nil
}

func (s *memFileStore) Undelete(_ context.Context, ids []string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var affected int64
	for _, id := range ids {
		if f, ok := s.m.files[id]; ok {
			f.DeletedAt = types.NOT_DELETE
			s.m.files[id] = f
			affected++
		}
	}
	return affected, nil
}

func (s *memFileStore) HardDelete(_ context.Context, ids []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, id := range ids {
		delete(s.m.files, id)
	}
	return nil
}

func (s *memFileStore) match(f types.File, opts types.ListFileOptions) bool {
	if len(opts.IDs) > 0 {
		found := false
		for _, id := range opts.IDs {
			if f.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if opts.UploaderID != "" && f.UploaderID != opts.UploaderID {
		return false
	}
	if opts.Keywords != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(opts.Keywords)) {
		return false
	}
	if !opts.IncludeDeleted && f.IsDeleted() {
		return false
	}
	if opts.Unlinked {
		for _, l := range s.m.links {
			if l.FileID == f.ID && !l.IsDeleted() {
				return false
			}
		}
	}
	if opts.RecordType != "" && opts.RecordID != "" {
		found := false
		for _, l := range s.m.links {
			if l.IsDeleted() || l.FileID != f.ID {
				continue
			}
			if l.RecordID != opts.RecordID || l.RecordType != opts.RecordType {
				continue
			}
			if opts.Category != "" && l.Category != opts.Category {
				continue
			}
			found = true
			break
		}
		if !found {
			return false
		}
	}
	if opts.VisibleTo != "" && f.Visibility != types.FILE_VISIBILITY_PUBLIC && f.UploaderID != opts.VisibleTo {
		return false
	}
	return true
}

func (s *memFileStore) List(_ context.Context, opts types.ListFileOptions, page, pageSize uint64) ([]types.File, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.File
	for _, f := range s.m.files {
		if s.match(f, opts) {
			res = append(res, f)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	if page != types.NO_PAGINATION || pageSize != types.NO_PAGINATION {
		offset := (page - 1) * pageSize
		if offset >= uint64(len(res)) {
			return nil, nil
		}
		res = res[offset:]
		if uint64(len(res)) > pageSize {
			res = res[:pageSize]
		}
	}
	return res, nil
}

func (s *memFileStore) Total(_ context.Context, opts types.ListFileOptions) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var total int64
	for _, f := range s.m.files {
		if s.match(f, opts) {
			total++
		}
	}
	return total, nil
}

type memFileLinkStore struct{ m *memStore }

func (s *memFileLinkStore) GetTable(...interface{}) string { return types.TABLE_FILE_LINK.Name() }

func (s *memFileLinkStore) Create(_ context.Context, data types.FileLink) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.links[data.ID] = data
	return nil
}

func (s *memFileLinkStore) Get(_ context.Context, id string) (*types.FileLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	l, ok := s.m.links[id]
	if !ok || l.IsDeleted() {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (s *memFileLinkStore) GetAny(_ context.Context, id string) (*types.FileLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	l, ok := s.m.links[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (s *memFileLinkStore) GetByTuple(_ context.Context, fileID, recordID, recordType, category string) (*types.FileLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, l := range s.m.links {
		if l.FileID == fileID && l.RecordID == recordID && l.RecordType == recordType && l.Category == category {
			res := l
			return &res, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memFileLinkStore) ListActiveByRecord(_ context.Context, recordID, recordType, category string) ([]types.FileLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.FileLink
	for _, l := range s.m.links {
		if l.IsDeleted() || l.RecordID != recordID || l.RecordType != recordType {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *memFileLinkStore) ListActiveByFile(_ context.Context, fileID string) ([]types.FileLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.FileLink
	for _, l := range s.m.links {
		if !l.IsDeleted() && l.FileID == fileID {
			res = append(res, l)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *memFileLinkStore) GroupActiveSlots(_ context.Context) ([]types.SlotGroup, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	agg := make(map[string]*types.SlotGroup)
	for _, l := range s.m.links {
		if l.IsDeleted() {
			continue
		}
		key := l.RecordType + "\x00" + l.RecordID + "\x00" + l.Category
		if g, ok := agg[key]; ok {
			g.Total++
			continue
		}
		agg[key] = &types.SlotGroup{
			RecordType: l.RecordType,
			RecordID:   l.RecordID,
			Category:   l.Category,
			Total:      1,
		}
	}
	var res []types.SlotGroup
	for _, g := range agg {
		res = append(res, *g)
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.RecordType != b.RecordType {
			return a.RecordType < b.RecordType
		}
		if a.RecordID != b.RecordID {
			return a.RecordID < b.RecordID
		}
		return a.Category < b.Category
	})
	return res, nil
}

func (s *memFileLinkStore) SoftDelete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if l, ok := s.m.links[id]; ok && !l.IsDeleted() {
		l.DeletedAt = time.Now().Unix()
		s.m.links[id] = l
	}
	return nil
}

func (s *memFileLinkStore) Undelete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if l, ok := s.m.links[id]; ok {
		l.DeletedAt = types.NOT_DELETE
		s.m.links[id] = l
	}
	return nil
}

func (s *memFileLinkStore) HardDelete(_ context.Context, ids []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, id := range ids {
		delete(s.m.links, id)
	}
	return nil
}

func (s *memFileLinkStore) HardDeleteByFile(_ context.Context, fileID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, l := range s.m.links {
		if l.FileID == fileID {
			delete(s.m.links, id)
		}
	}
	return nil
}

func (s *memFileLinkStore) HardDeleteByRecord(_ context.Context, recordID, recordType string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, l := range s.m.links {
		if l.RecordID == recordID && l.RecordType == recordType {
			delete(s.m.links, id)
		}
	}
	return nil
}

type memRecycleBinStore struct{ m *memStore }

func (s *memRecycleBinStore) GetTable(...interface{}) string { return types.TABLE_RECYCLE_BIN.Name() }

func (s *memRecycleBinStore) Create(_ context.Context, data types.RecycleBinEntry) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.binCreateErr != nil {
		return s.m.binCreateErr
	}
	s.m.bins[data.ID] = data
	return nil
}

func (s *memRecycleBinStore) Get(_ context.Context, id string) (*types.RecycleBinEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	e, ok := s.m.bins[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (s *memRecycleBinStore) GetByResource(_ context.Context, resourceType, resourceID string) (*types.RecycleBinEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, e := range s.m.bins {
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			res := e
			return &res, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memRecycleBinStore) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.bins, id)
	return nil
}

func (s *memRecycleBinStore) match(e types.RecycleBinEntry, opts types.ListRecycleBinOptions) bool {
	if opts.DeletedBy != "" && e.DeletedBy != opts.DeletedBy {
		return false
	}
	if opts.ResourceType != "" && e.ResourceType != opts.ResourceType {
		return false
	}
	if opts.Keywords != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(opts.Keywords)) {
		return false
	}
	return true
}

func (s *memRecycleBinStore) List(_ context.Context, opts types.ListRecycleBinOptions, page, pageSize uint64) ([]types.RecycleBinEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.RecycleBinEntry
	for _, e := range s.m.bins {
		if s.match(e, opts) {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

func (s *memRecycleBinStore) Total(_ context.Context, opts types.ListRecycleBinOptions) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var total int64
	for _, e := range s.m.bins {
		if s.match(e, opts) {
			total++
		}
	}
	return total, nil
}

func (s *memRecycleBinStore) ListExpired(_ context.Context, before int64, limit uint64) ([]types.RecycleBinEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.RecycleBinEntry
	for _, e := range s.m.bins {
		if e.ExpiresAt > 0 && e.ExpiresAt <= before {
			res = append(res, e)
		}
		if uint64(len(res)) >= limit {
			break
		}
	}
	return res, nil
}

type memUserStore struct{ m *memStore }

func (s *memUserStore) GetTable(...interface{}) string { return types.TABLE_USER.Name() }

func (s *memUserStore) Create(_ context.Context, data types.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[data.ID] = data
	return nil
}

func (s *memUserStore) GetUser(_ context.Context, id string) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s *memUserStore) UpdateUserProfile(_ context.Context, id, name, email, avatar string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u, ok := s.m.users[id]; ok {
		u.Name = name
		u.Email = email
		u.Avatar = avatar
		s.m.users[id] = u
	}
	return nil
}

func (s *memUserStore) ListByIDs(_ context.Context, ids []string) ([]types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.User
	for _, id := range ids {
		if u, ok := s.m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (s *memUserStore) GetRecord(_ context.Context, id string) (*types.RecyclableRecord, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &types.RecyclableRecord{ID: u.ID, Name: u.Name, DeletedAt: u.DeletedAt}, nil
}

func (s *memUserStore) GetRecordForUpdate(ctx context.Context, id string) (*types.RecyclableRecord, error) {
	return s.GetRecord(ctx, id)
}

func (s *memUserStore) SoftDeleteRecord(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u, ok := s.m.users[id]; ok {
		u.DeletedAt = time.Now().Unix()
		s.m.users[id] = u
	}
	return nil
}

func (s *memUserStore) UndeleteRecord(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u, ok := s.m.users[id]; ok {
		u.DeletedAt = types.NOT_DELETE
		s.m.users[id] = u
	}
	return nil
}

func (s *memUserStore) HardDeleteRecord(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.users, id)
	return nil
}

type memCleanupQueueStore struct{ m *memStore }

func (s *memCleanupQueueStore) GetTable(...interface{}) string { return types.TABLE_CLEANUP_QUEUE.Name() }

func (s *memCleanupQueueStore) Add(_ context.Context, paths []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := time.Now().Unix()
	for _, p := range paths {
		s.m.queue[p] = now
	}
	return nil
}

func (s *memCleanupQueueStore) List(_ context.Context, limit uint64) ([]types.CleanupTask, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var res []types.CleanupTask
	for p, at := range s.m.queue {
		res = append(res, types.CleanupTask{ObjectPath: p, CreatedAt: at})
		if uint64(len(res)) >= limit {
			break
		}
	}
	return res, nil
}

func (s *memCleanupQueueStore) Remove(_ context.Context, paths []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range paths {
		delete(s.m.queue, p)
	}
	return nil
}

// fakeStorage records object deletions; Fail marks paths whose deletion
// should error to exercise the retry queue.
type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
}

func (f *fakeStorage) GetStaticDomain() string { return "https://static.test" }

func (f *fakeStorage) GenUploadObjectPreSignURL(objectPath string) (string, error) {
	return "https://s3.test/upload" + objectPath, nil
}

func (f *fakeStorage) GenGetObjectPreSignURL(objectPath string) (string, error) {
	return "https://s3.test/get" + objectPath, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, objectPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[objectPath] {
		return sql.ErrConnDone
	}
	f.deleted = append(f.deleted, objectPath)
	return nil
}

func (f *fakeStorage) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
