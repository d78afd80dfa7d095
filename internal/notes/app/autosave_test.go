package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/domain/entities"
)

func TestAutosave_DebouncedCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)

	f.autosave.SetTitle(ctx, "G")
	f.autosave.SetTitle(ctx, "Gr")
	f.autosave.SetTitle(ctx, "Groceries")

	assert.Equal(t, app.AutosaveEditing, f.autosave.State())
	assert.Equal(t, 1, f.scheduler.pending(), "each edit cancels the previous timer")
	assert.Len(t, f.scheduler.timers, 3)
	assert.Equal(t, time.Second, f.scheduler.timers[2].delay)

	stored, _ := f.notes.Get(note.ID)
	assert.Equal(t, entities.DefaultNoteTitle, stored.Title, "nothing is written before the delay elapses")

	f.scheduler.fireAll()

	assert.Equal(t, app.AutosaveIdle, f.autosave.State())
	stored, _ = f.notes.Get(note.ID)
	assert.Equal(t, "Groceries", stored.Title)
	assert.True(t, stored.UpdatedAt.After(note.UpdatedAt))
}

func TestAutosave_SwitchFlushesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.notes.Create(ctx, nil)
	second := f.notes.Create(ctx, nil)

	f.autosave.Open(ctx, first)
	f.autosave.SetContent(ctx, "draft body")

	f.autosave.Open(ctx, second)

	stored, _ := f.notes.Get(first.ID)
	assert.Equal(t, "draft body", stored.Content)
	assert.Equal(t, 0, f.scheduler.pending(), "pending timer is canceled by the flush")
	assert.Equal(t, second.ID, f.autosave.ActiveID())
	assert.Equal(t, app.AutosaveIdle, f.autosave.State())
}

func TestAutosave_UnchangedDraftIsNotWritten(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)
	revision := f.notes.Revision()

	f.autosave.SetTitle(ctx, "Something")
	f.autosave.SetTitle(ctx, note.Title)
	f.scheduler.fireAll()

	assert.Equal(t, revision, f.notes.Revision())
	stored, _ := f.notes.Get(note.ID)
	assert.Equal(t, note.UpdatedAt, stored.UpdatedAt)
}

func TestAutosave_BlankTitleBecomesUntitled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)

	f.autosave.SetTitle(ctx, "   ")
	f.autosave.SetContent(ctx, "body")
	require.True(t, f.autosave.Flush(ctx))

	stored, _ := f.notes.Get(note.ID)
	assert.Equal(t, entities.DefaultNoteTitle, stored.Title)
	assert.Equal(t, "body", stored.Content)
}

func TestAutosave_Tags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)

	assert.True(t, f.autosave.AddTag(ctx, " work "))
	assert.False(t, f.autosave.AddTag(ctx, "work"))
	assert.False(t, f.autosave.AddTag(ctx, ""))
	assert.True(t, f.autosave.AddTag(ctx, "urgent"))
	assert.True(t, f.autosave.AddTag(ctx, "later"))
	assert.True(t, f.autosave.RemoveLastTag(ctx))
	assert.True(t, f.autosave.RemoveTag(ctx, "work"))
	assert.False(t, f.autosave.RemoveTag(ctx, "missing"))

	f.scheduler.fireAll()

	stored, _ := f.notes.Get(note.ID)
	assert.Equal(t, []string{"urgent"}, stored.Tags)
}

func TestAutosave_FolderChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	folder, err := f.folders.Create(ctx, "Work")
	require.NoError(t, err)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)

	f.autosave.SetFolder(ctx, &folder.ID)
	f.scheduler.fireAll()

	stored, _ := f.notes.Get(note.ID)
	require.NotNil(t, stored.FolderID)
	assert.Equal(t, folder.ID, *stored.FolderID)
}

func TestAutosave_DeletedNoteDraftIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)
	f.autosave.SetTitle(ctx, "late edit")

	f.notes.Delete(ctx, note.ID)
	f.scheduler.fireAll()

	assert.Equal(t, 0, f.notes.Len(), "a commit for a deleted note does not resurrect it")
}

func TestAutosave_NoActiveNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.autosave.SetTitle(ctx, "ignored")

	assert.Equal(t, app.AutosaveIdle, f.autosave.State())
	assert.Empty(t, f.scheduler.timers)
	assert.False(t, f.autosave.Flush(ctx))
}

func TestAutosave_Discard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note := f.notes.Create(ctx, nil)
	f.autosave.Open(ctx, note)
	f.autosave.SetTitle(ctx, "never saved")

	f.autosave.Discard(ctx)
	f.scheduler.fireAll()

	stored, _ := f.notes.Get(note.ID)
	assert.Equal(t, entities.DefaultNoteTitle, stored.Title)
	assert.Empty(t, f.autosave.ActiveID())
}
