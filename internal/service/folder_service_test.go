package service

import (
	"context"
	"testing"
	"time"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFolderFixture() (*memoryDB, *recordingEvents, IFolderService) {
	db := newMemoryDB()
	evs := &recordingEvents{}
	corpus := NewCorpusService(db, logger.NewNopLogger())
	return db, evs, NewFolderService(db, corpus, evs, logger.NewNopLogger())
}

func addFolder(db *memoryDB, name string, parent *uuid.UUID) *entity.Folder {
	f := &entity.Folder{Id: uuid.New(), Name: name, ParentId: parent, CreatedAt: time.Now()}
	db.folders[f.Id] = f
	return f
}

func TestFolderDeleteIsRecursive(t *testing.T) {
	db, evs, svc := newFolderFixture()
	root := addFolder(db, "root", nil)
	child := addFolder(db, "child", &root.Id)
	grandchild := addFolder(db, "grandchild", &child.Id)
	other := addFolder(db, "other", nil)

	inChild := seedText(db, "a", "alpha", []float32{1}, time.Now())
	inChild.FolderId = &child.Id
	inGrandchild := seedText(db, "b", "beta", []float32{1}, time.Now())
	inGrandchild.FolderId = &grandchild.Id
	unindexed := &entity.Text{Id: uuid.New(), Name: "c", FolderId: &root.Id}
	db.texts[unindexed.Id] = unindexed
	kept := seedText(db, "d", "delta", []float32{1}, time.Now())
	kept.FolderId = &other.Id

	res, err := svc.Delete(context.Background(), root.Id)
	require.NoError(t, err)
	assert.Equal(t, &dto.DeleteFolderResponse{FolderCount: 3, TextCount: 3}, res)

	assert.Len(t, db.folders, 1)
	assert.Contains(t, db.folders, other.Id)
	assert.Len(t, db.texts, 1)
	assert.Contains(t, db.texts, kept.Id)
	assert.Len(t, db.embeddings, 1)
	assert.Contains(t, db.embeddings, *kept.EmbeddingId)
	assert.Equal(t, []string{events.TypeFolderDeleted}, evs.types())
}

func TestFolderUpdate(t *testing.T) {
	db, _, svc := newFolderFixture()
	root := addFolder(db, "root", nil)
	child := addFolder(db, "child", &root.Id)
	sibling := addFolder(db, "sibling", nil)
	missing := uuid.New()

	tests := []struct {
		name    string
		req     dto.UpdateFolderRequest
		wantErr error
	}{
		{"rename", dto.UpdateFolderRequest{Id: root.Id, Name: "renamed"}, nil},
		{"move under sibling", dto.UpdateFolderRequest{Id: child.Id, Name: "child", ParentId: &sibling.Id}, nil},
		{"move under itself", dto.UpdateFolderRequest{Id: root.Id, Name: "root", ParentId: &root.Id}, ErrFolderCycle},
		{"move under descendant", dto.UpdateFolderRequest{Id: sibling.Id, Name: "sibling", ParentId: &child.Id}, ErrFolderCycle},
		{"unknown parent", dto.UpdateFolderRequest{Id: root.Id, Name: "root", ParentId: &missing}, ErrParentNotFound},
		{"unknown folder", dto.UpdateFolderRequest{Id: missing, Name: "x"}, ErrFolderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.Name, db.folders[tt.req.Id].Name)
		})
	}
}

func TestFolderTree(t *testing.T) {
	db, _, svc := newFolderFixture()
	root := addFolder(db, "root", nil)
	child := addFolder(db, "child", &root.Id)
	filed := &entity.Text{Id: uuid.New(), Name: "filed", FolderId: &child.Id}
	loose := &entity.Text{Id: uuid.New(), Name: "loose"}
	db.texts[filed.Id] = filed
	db.texts[loose.Id] = loose

	tree, err := svc.GetTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree.Folders, 1)
	assert.Equal(t, root.Id, tree.Folders[0].Id)
	require.Len(t, tree.Folders[0].Children, 1)
	assert.Equal(t, filed.Id, tree.Folders[0].Children[0].Texts[0].Id)
	require.Len(t, tree.Unfiled, 1)
	assert.Equal(t, loose.Id, tree.Unfiled[0].Id)
	assert.False(t, tree.Unfiled[0].Indexed)
}

func TestFolderCreateChecksParent(t *testing.T) {
	db, _, svc := newFolderFixture()
	missing := uuid.New()

	_, err := svc.Create(context.Background(), &dto.CreateFolderRequest{Name: "x", ParentId: &missing})
	assert.ErrorIs(t, err, ErrParentNotFound)

	res, err := svc.Create(context.Background(), &dto.CreateFolderRequest{Name: "x"})
	require.NoError(t, err)
	assert.Contains(t, db.folders, res.Id)
}
