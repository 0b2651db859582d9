package v1_test

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/app/core/srv"
	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/types"
	"github.com/filecab/filecab/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetupIDWorker(1)
	os.Exit(m.Run())
}

func newTestCore() (*core.Core, *memStore, *fakeStorage) {
	cfg := core.CoreConfig{}
	cfg.Attach.SingleInstance = []string{"users/avatar"}
	cfg.Recycle.RetentionDays = 30

	ms := newMemStore()
	storage := &fakeStorage{}
	c := core.NewCoreWithDeps(cfg, ms, storage)

	c.RegisterRecyclable(types.RECORD_TYPE_USERS, &memUserStore{ms})
	c.RegisterNameResolver(types.RECORD_TYPE_USERS, func(ctx context.Context, ids []string) (map[string]string, error) {
		users, err := (&memUserStore{ms}).ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		res := make(map[string]string, len(users))
		for _, u := range users {
			res[u.ID] = u.Name
		}
		return res, nil
	})
	return c, ms, storage
}

func ctxAs(user, role string) context.Context {
	return context.WithValue(context.Background(), v1.TOKEN_CONTEXT_KEY, v1.AccessClaims{ //nolint:staticcheck
		User: user,
		Role: role,
	})
}

func seedFile(ms *memStore, id, name, uploader, visibility string) types.File {
	f := types.File{
		ID:         id,
		Name:       name,
		MimeType:   "image/png",
		Size:       128,
		ObjectPath: "/files/" + uploader + "/" + id + ".png",
		Visibility: visibility,
		UploaderID: uploader,
		CreatedAt:  1700000000,
	}
	ms.files[id] = f
	return f
}

func seedUser(ms *memStore, id, name string) {
	ms.users[id] = types.User{ID: id, Name: name, CreatedAt: 1700000000}
}

func TestAttachDetach(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedFile(ms, "f1", "doc.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	logic := v1.NewAttachmentLogic(ctx, c)

	link, err := logic.Attach("f1", "r1", "posts", "attachment")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "f1", link.FileID)
	assert.Equal(t, "u1", link.CreatedBy)

	// same tuple again is a conflict
	_, err = logic.Attach("f1", "r1", "posts", "attachment")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusConflict))

	// unknown file
	_, err = logic.Attach("missing", "r1", "posts", "attachment")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusNotFound))

	require.NoError(t, logic.Detach(link.ID))
	links, err := logic.FindLinks("r1", "posts", "")
	require.NoError(t, err)
	assert.Empty(t, links)

	// detached, not destroyed: the file is merely uncategorized now
	_, err = c.Store().FileStore().Get(ctx, "f1")
	assert.NoError(t, err)
}

func TestAttachReusesSoftDeletedTuple(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedFile(ms, "f1", "doc.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	logic := v1.NewAttachmentLogic(ctx, c)
	link, err := logic.Attach("f1", "r1", "posts", "attachment")
	require.NoError(t, err)
	require.NoError(t, logic.Detach(link.ID))

	again, err := logic.Attach("f1", "r1", "posts", "attachment")
	require.NoError(t, err)
	assert.Equal(t, link.ID, again.ID, "re-attach should revive the old row, not insert a twin")
}

func TestSingleInstanceDisplacement(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedFile(ms, "f1", "old-avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "new-avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	logic := v1.NewAttachmentLogic(ctx, c)
	assert.True(t, logic.IsSingleInstance("users", "avatar"))
	assert.False(t, logic.IsSingleInstance("users", "attachment"))

	_, err := logic.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)

	// second file in the slot displaces the first into the bin
	_, err = logic.Attach("f2", "381", "users", "avatar")
	require.NoError(t, err)

	occupants, err := logic.FindLinks("381", "users", "avatar")
	require.NoError(t, err)
	require.Len(t, occupants, 1)
	assert.Equal(t, "f2", occupants[0].FileID)

	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, types.RESOURCE_TYPE_FILES, "f1")
	require.NoError(t, err)
	require.NotNil(t, entry.Metadata.File)
	assert.Equal(t, "avatar", entry.Metadata.File.Category)
	assert.Len(t, entry.Metadata.File.LinksBackup, 1)

	assert.True(t, ms.files["f1"].IsDeleted())
}

func TestRestoreDisplacesCurrentOccupant(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedFile(ms, "f1", "old-avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "new-avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	_, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)
	_, err = attach.Attach("f2", "381", "users", "avatar")
	require.NoError(t, err)

	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, types.RESOURCE_TYPE_FILES, "f1")
	require.NoError(t, err)

	// restoring f1 swaps the slot back: f2 lands in the bin
	require.NoError(t, v1.NewRecycleLogic(ctx, c).Restore(entry.ID))

	occupants, err := attach.FindLinks("381", "users", "avatar")
	require.NoError(t, err)
	require.Len(t, occupants, 1)
	assert.Equal(t, "f1", occupants[0].FileID)
	assert.False(t, ms.files["f1"].IsDeleted())

	displaced, err := c.Store().RecycleBinStore().GetByResource(ctx, types.RESOURCE_TYPE_FILES, "f2")
	require.NoError(t, err)
	assert.NotNil(t, displaced.Metadata.File)
	assert.True(t, ms.files["f2"].IsDeleted())

	// the restored entry is gone
	_, err = c.Store().RecycleBinStore().Get(ctx, entry.ID)
	assert.Error(t, err)
}

func TestMoveToBinRecordCascade(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "contract.pdf", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	l1, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)
	l2, err := attach.Attach("f2", "381", "users", "attachment")
	require.NoError(t, err)

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin("users", "381"))

	// record and every attached file are in the deleted state
	assert.True(t, ms.users["381"].IsDeleted())
	assert.True(t, ms.files["f1"].IsDeleted())
	assert.True(t, ms.files["f2"].IsDeleted())
	_, ok := ms.links[l1.ID]
	assert.False(t, ok, "links are destroyed, not soft-deleted")
	_, ok = ms.links[l2.ID]
	assert.False(t, ok)

	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, "users", "381")
	require.NoError(t, err)
	assert.Equal(t, "Alice", entry.Name)
	require.NotNil(t, entry.Metadata.Record)
	assert.ElementsMatch(t, []string{"f1", "f2"}, entry.Metadata.Record.Cascade.Files)
	assert.ElementsMatch(t, []string{l1.ID, l2.ID}, entry.Metadata.Record.Cascade.Links)
	assert.Len(t, entry.Metadata.Record.LinksBackup, 2)

	// binning the same resource twice is a conflict
	err = recycle.MoveToBin("users", "381")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusConflict))

	// round trip: restore brings record, files and links back verbatim
	require.NoError(t, recycle.Restore(entry.ID))
	assert.False(t, ms.users["381"].IsDeleted())
	assert.False(t, ms.files["f1"].IsDeleted())
	assert.False(t, ms.files["f2"].IsDeleted())

	links, err := attach.FindLinks("381", "users", "")
	require.NoError(t, err)
	require.Len(t, links, 2)
	gotIDs := []string{links[0].ID, links[1].ID}
	assert.ElementsMatch(t, []string{l1.ID, l2.ID}, gotIDs)
}

func TestMoveToBinUnknownResource(t *testing.T) {
	c, _, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)

	err := v1.NewRecycleLogic(ctx, c).MoveToBin("martians", "1")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusBadRequest))

	err = v1.NewRecycleLogic(ctx, c).MoveToBin("users", "missing")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusNotFound))
}

func TestRestoreDataLoss(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	_, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin("users", "381"))

	// a cascaded file vanished behind the bin's back
	delete(ms.files, "f1")

	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, "users", "381")
	require.NoError(t, err)
	err = recycle.Restore(entry.ID)
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusInternalServerError))
}

func TestRestorePermission(t *testing.T) {
	c, ms, _ := newTestCore()
	owner := ctxAs("u1", srv.RoleMember)
	seedFile(ms, "f1", "doc.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	require.NoError(t, v1.NewRecycleLogic(owner, c).MoveToBin(types.RESOURCE_TYPE_FILES, "f1"))
	entry, err := c.Store().RecycleBinStore().GetByResource(owner, types.RESOURCE_TYPE_FILES, "f1")
	require.NoError(t, err)

	// a different non-admin user may not restore
	err = v1.NewRecycleLogic(ctxAs("u2", srv.RoleMember), c).Restore(entry.ID)
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusForbidden))

	// an admin may
	require.NoError(t, v1.NewRecycleLogic(ctxAs("u3", srv.RoleAdmin), c).Restore(entry.ID))
	assert.False(t, ms.files["f1"].IsDeleted())
}

func TestForceDelete(t *testing.T) {
	c, ms, storage := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	f1 := seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	_, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin("users", "381"))
	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, "users", "381")
	require.NoError(t, err)

	// editors cannot force-delete
	err = recycle.ForceDelete(entry.ID)
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusForbidden))

	admin := v1.NewRecycleLogic(ctxAs("boss", srv.RoleAdmin), c)
	require.NoError(t, admin.ForceDelete(entry.ID))

	_, ok := ms.users["381"]
	assert.False(t, ok)
	_, ok = ms.files["f1"]
	assert.False(t, ok)
	_, err = c.Store().RecycleBinStore().Get(ctx, entry.ID)
	assert.Error(t, err)

	// the blob was unlinked and acknowledged out of the cleanup queue
	assert.Contains(t, storage.Deleted(), f1.ObjectPath)
	tasks, err := c.Store().CleanupQueueStore().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestForceDeletePurgesDetachedLinks(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	admin := v1.NewRecycleLogic(ctxAs("boss", srv.RoleAdmin), c)
	seedFile(ms, "f1", "doc.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	link, err := attach.Attach("f1", "r1", "posts", "attachment")
	require.NoError(t, err)
	require.NoError(t, attach.Detach(link.ID))

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin(types.RESOURCE_TYPE_FILES, "f1"))
	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, types.RESOURCE_TYPE_FILES, "f1")
	require.NoError(t, err)

	// the detached link never made it into the bin snapshot, yet the purge
	// must not leave it behind pointing at a vanished file
	require.NoError(t, admin.ForceDelete(entry.ID))
	_, ok := ms.links[link.ID]
	assert.False(t, ok, "soft-deleted link must not survive the purge of its file")

	// record branch: a link detached from the record is purged with it
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f2", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	l2, err := attach.Attach("f2", "381", "users", "avatar")
	require.NoError(t, err)
	require.NoError(t, attach.Detach(l2.ID))

	require.NoError(t, recycle.MoveToBin("users", "381"))
	entry, err = c.Store().RecycleBinStore().GetByResource(ctx, "users", "381")
	require.NoError(t, err)
	require.NoError(t, admin.ForceDelete(entry.ID))
	assert.Empty(t, ms.links)
}

func TestMoveToBinRollsBackOnFailure(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	link, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)

	// fail the very last write of the operation
	ms.binCreateErr = sql.ErrTxDone
	err = v1.NewRecycleLogic(ctx, c).MoveToBin("users", "381")
	require.Error(t, err)

	// the rolled-back state equals the pre-call state
	assert.False(t, ms.users["381"].IsDeleted())
	assert.False(t, ms.files["f1"].IsDeleted())
	got, ok := ms.links[link.ID]
	require.True(t, ok)
	assert.False(t, got.IsDeleted())
	assert.Empty(t, ms.bins)
}

func TestRecycleEventsPerAffectedRow(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "contract.pdf", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	l1, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)
	l2, err := attach.Attach("f2", "381", "users", "attachment")
	require.NoError(t, err)

	var events []string
	c.SetRowChangePublisher(func(subject string, event types.RowEvent, data any) {
		id := ""
		if m, ok := data.(map[string]any); ok {
			id, _ = m["id"].(string)
		}
		events = append(events, subject+"/"+string(event)+"/"+id)
	})

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin("users", "381"))
	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, "users", "381")
	require.NoError(t, err)

	// every cascaded row announces its own change
	assert.Contains(t, events, "file/deleted/f1")
	assert.Contains(t, events, "file/deleted/f2")
	assert.Contains(t, events, "file_link/deleted/"+l1.ID)
	assert.Contains(t, events, "file_link/deleted/"+l2.ID)
	assert.Contains(t, events, "users/deleted/381")
	assert.Contains(t, events, "recycle_bin/created/"+entry.ID)

	events = nil
	require.NoError(t, recycle.Restore(entry.ID))
	assert.Contains(t, events, "users/created/381")
	assert.Contains(t, events, "file/created/f1")
	assert.Contains(t, events, "file/created/f2")
	assert.Contains(t, events, "file_link/created/"+l1.ID)
	assert.Contains(t, events, "file_link/created/"+l2.ID)
	assert.Contains(t, events, "recycle_bin/deleted/"+entry.ID)
}

func TestForceDeleteCleanupRetry(t *testing.T) {
	c, ms, storage := newTestCore()
	ctx := ctxAs("boss", srv.RoleAdmin)
	f1 := seedFile(ms, "f1", "doc.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	storage.fail = map[string]bool{f1.ObjectPath: true}

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin(types.RESOURCE_TYPE_FILES, "f1"))
	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, types.RESOURCE_TYPE_FILES, "f1")
	require.NoError(t, err)

	// force delete succeeds even though the blob unlink fails
	require.NoError(t, recycle.ForceDelete(entry.ID))
	tasks, err := c.Store().CleanupQueueStore().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, f1.ObjectPath, tasks[0].ObjectPath)

	// sweep retries once the storage recovers
	storage.fail = nil
	require.NoError(t, recycle.RetryCleanup(10))
	tasks, err = c.Store().CleanupQueueStore().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Contains(t, storage.Deleted(), f1.ObjectPath)
}

func TestListBinEntriesVisibility(t *testing.T) {
	c, ms, _ := newTestCore()
	seedFile(ms, "f1", "mine.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "theirs.png", "u2", types.FILE_VISIBILITY_PRIVATE)

	require.NoError(t, v1.NewRecycleLogic(ctxAs("u1", srv.RoleMember), c).MoveToBin(types.RESOURCE_TYPE_FILES, "f1"))
	require.NoError(t, v1.NewRecycleLogic(ctxAs("u2", srv.RoleMember), c).MoveToBin(types.RESOURCE_TYPE_FILES, "f2"))

	list, total, err := v1.NewRecycleLogic(ctxAs("u1", srv.RoleMember), c).ListBinEntries(types.ListRecycleBinOptions{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].DeletedBy)

	_, total, err = v1.NewRecycleLogic(ctxAs("boss", srv.RoleAdmin), c).ListBinEntries(types.ListRecycleBinOptions{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestPurgeExpired(t *testing.T) {
	c, ms, storage := newTestCore()
	ctx := ctxAs("u1", srv.RoleMember)
	f1 := seedFile(ms, "f1", "stale.png", "u1", types.FILE_VISIBILITY_PRIVATE)

	recycle := v1.NewRecycleLogic(ctx, c)
	require.NoError(t, recycle.MoveToBin(types.RESOURCE_TYPE_FILES, "f1"))

	// push the entry past its expiry
	entry, err := c.Store().RecycleBinStore().GetByResource(ctx, types.RESOURCE_TYPE_FILES, "f1")
	require.NoError(t, err)
	expired := *entry
	expired.ExpiresAt = 1
	ms.bins[entry.ID] = expired

	purged, err := recycle.PurgeExpired(100)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, ok := ms.files["f1"]
	assert.False(t, ok)
	assert.Contains(t, storage.Deleted(), f1.ObjectPath)
}

func TestBuildTree(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "contract.pdf", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f3", "loose.txt", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	_, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)
	_, err = attach.Attach("f2", "381", "users", "attachment")
	require.NoError(t, err)

	tree, err := v1.NewTreeLogic(ctx, c).BuildTree()
	require.NoError(t, err)
	assert.Equal(t, types.TREE_NODE_ROOT, tree.Kind)
	assert.EqualValues(t, 3, tree.Count)
	require.Len(t, tree.Children, 2)

	usersNode := tree.Children[0]
	assert.Equal(t, "users", usersNode.Label)
	assert.EqualValues(t, 2, usersNode.Count)
	require.Len(t, usersNode.Children, 1)

	recordNode := usersNode.Children[0]
	assert.Equal(t, "Alice", recordNode.Label, "record label resolved through the name resolver")
	assert.Equal(t, "381", recordNode.RecordID)
	require.Len(t, recordNode.Children, 2)
	assert.Equal(t, "attachment", recordNode.Children[0].Label)
	assert.Equal(t, "avatar", recordNode.Children[1].Label)

	uncategorized := tree.Children[1]
	assert.Equal(t, types.RECORD_TYPE_UNCATEGORIZED, uncategorized.Label)
	assert.EqualValues(t, 1, uncategorized.Count)
}

func TestBuildTreeLabelFallback(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedFile(ms, "f1", "note.txt", "u1", types.FILE_VISIBILITY_PRIVATE)

	// "posts" has no registered resolver, so the label falls back to the id
	_, err := v1.NewAttachmentLogic(ctx, c).Attach("f1", "post-123456789012345", "posts", "attachment")
	require.NoError(t, err)

	tree, err := v1.NewTreeLogic(ctx, c).BuildTree()
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, utils.ShortLabel("post-123456789012345", 12), tree.Children[0].Children[0].Label)
}

func TestListFilesByPath(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)
	seedUser(ms, "381", "Alice")
	seedFile(ms, "f1", "avatar.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "contract.pdf", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f3", "loose.txt", "u1", types.FILE_VISIBILITY_PRIVATE)

	attach := v1.NewAttachmentLogic(ctx, c)
	_, err := attach.Attach("f1", "381", "users", "avatar")
	require.NoError(t, err)
	_, err = attach.Attach("f2", "381", "users", "attachment")
	require.NoError(t, err)

	logic := v1.NewFileLogic(ctx, c)

	list, total, err := logic.List(nil, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)

	list, total, err = logic.List([]string{types.RECORD_TYPE_UNCATEGORIZED}, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "f3", list[0].ID)

	_, total, err = logic.List([]string{"users", "381"}, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	list, total, err = logic.List([]string{"users", "381", "avatar"}, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "f1", list[0].ID)

	// a bare record type names a branch, not a file set
	list, total, err = logic.List([]string{"users"}, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, list)

	_, _, err = logic.List([]string{"users", "381", "avatar", "extra"}, "", 1, 20)
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusBadRequest))

	// keyword filter
	_, total, err = logic.List(nil, "contract", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListFilesVisibility(t *testing.T) {
	c, ms, _ := newTestCore()
	seedFile(ms, "f1", "mine.png", "u1", types.FILE_VISIBILITY_PRIVATE)
	seedFile(ms, "f2", "public.png", "u2", types.FILE_VISIBILITY_PUBLIC)
	seedFile(ms, "f3", "secret.png", "u2", types.FILE_VISIBILITY_PRIVATE)

	_, total, err := v1.NewFileLogic(ctxAs("u1", srv.RoleMember), c).List(nil, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "member sees public files plus their own")

	_, total, err = v1.NewFileLogic(ctxAs("boss", srv.RoleAdmin), c).List(nil, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestGetFileVisibility(t *testing.T) {
	c, ms, _ := newTestCore()
	seedFile(ms, "f1", "secret.png", "u2", types.FILE_VISIBILITY_PRIVATE)

	_, err := v1.NewFileLogic(ctxAs("u1", srv.RoleMember), c).GetFile("f1")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusForbidden))

	got, err := v1.NewFileLogic(ctxAs("u2", srv.RoleMember), c).GetFile("f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)

	url, err := v1.NewFileLogic(ctxAs("u2", srv.RoleMember), c).GetDownloadURL("f1")
	require.NoError(t, err)
	assert.Contains(t, url, "https://s3.test/get")
}

func TestGenClientUploadKey(t *testing.T) {
	c, ms, _ := newTestCore()
	ctx := ctxAs("u1", srv.RoleEditor)

	logic := v1.NewUploadLogic(ctx, c)

	_, err := logic.GenClientUploadKey("huge.bin", "application/octet-stream", 31*1024*1024, "")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusForbidden))

	_, err = logic.GenClientUploadKey("x.png", "image/png", 100, "internal")
	require.Error(t, err)
	assert.True(t, errors.CodeIs(err, http.StatusBadRequest))

	key, err := logic.GenClientUploadKey("photo.png", "image/png", 100, "")
	require.NoError(t, err)
	assert.NotEmpty(t, key.FileID)
	assert.Contains(t, key.Key, "https://s3.test/upload")
	assert.Equal(t, "https://static.test", key.StaticDomain)

	f, ok := ms.files[key.FileID]
	require.True(t, ok)
	assert.Equal(t, types.FILE_VISIBILITY_PRIVATE, f.Visibility)
	assert.Equal(t, "u1", f.UploaderID)
	assert.Equal(t, key.FullPath, f.ObjectPath)
}
