package app

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/services"
	"notekeeper/pkg/logger"
)

// DefaultAutosaveDelay - пауза после последней правки перед сохранением.
const DefaultAutosaveDelay = time.Second

// Константы для сообщений logger.
const (
	LogDraftOpened    = "draft opened"
	LogDraftCommitted = "draft committed"
	LogDraftUnchanged = "draft matches stored note, nothing to commit"
	LogDraftDiscarded = "draft discarded"
	LogDraftOrphaned  = "draft note no longer exists, commit dropped"
)

// AutosaveState - состояние автосохранения.
type AutosaveState int

// Состояния автосохранения.
const (
	AutosaveIdle AutosaveState = iota
	AutosaveEditing
)

func (s AutosaveState) String() string {
	if s == AutosaveEditing {
		return "editing"
	}
	return "idle"
}

// Draft - редактируемые поля активной заметки.
type Draft struct {
	Title    string
	Content  string
	Tags     []string
	FolderID *string
}

func (d Draft) clone() Draft {
	d.Tags = slices.Clone(d.Tags)
	d.FolderID = entities.CloneID(d.FolderID)
	return d
}

// AutosaveController буферизует правки активной заметки и сохраняет их
// через NoteStore.Update после паузы. Каждая правка отменяет и заново
// запускает таймер; смена активной заметки сохраняет черновик немедленно.
type AutosaveController struct {
	notes     *NoteStore
	scheduler services.Scheduler
	delay     time.Duration

	activeID string
	draft    Draft
	state    AutosaveState
	timer    services.Timer
}

// NewAutosaveController создает контроллер. Нулевая задержка заменяется DefaultAutosaveDelay.
func NewAutosaveController(notes *NoteStore, scheduler services.Scheduler, delay time.Duration) *AutosaveController {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &AutosaveController{
		notes:     notes,
		scheduler: scheduler,
		delay:     delay,
	}
}

// Open делает note активной. Несохраненный черновик предыдущей заметки
// сохраняется до переключения.
func (c *AutosaveController) Open(ctx context.Context, note *entities.Note) {
	c.Flush(ctx)

	c.activeID = note.ID
	c.draft = Draft{
		Title:    note.Title,
		Content:  note.Content,
		Tags:     slices.Clone(note.Tags),
		FolderID: entities.CloneID(note.FolderID),
	}
	c.state = AutosaveIdle

	logger.Log(ctx).Debug(ctx, LogDraftOpened, zap.String("note_id", note.ID))
}

// Close сохраняет черновик и снимает активную заметку.
func (c *AutosaveController) Close(ctx context.Context) {
	c.Flush(ctx)
	c.activeID = ""
	c.draft = Draft{}
}

// Discard отбрасывает черновик без сохранения, например после удаления заметки.
func (c *AutosaveController) Discard(ctx context.Context) {
	c.stopTimer()
	if c.activeID != "" {
		logger.Log(ctx).Debug(ctx, LogDraftDiscarded, zap.String("note_id", c.activeID))
	}
	c.activeID = ""
	c.draft = Draft{}
	c.state = AutosaveIdle
}

// SetTitle меняет заголовок черновика.
func (c *AutosaveController) SetTitle(ctx context.Context, title string) {
	c.edit(ctx, func(d *Draft) { d.Title = title })
}

// SetContent меняет текст черновика.
func (c *AutosaveController) SetContent(ctx context.Context, content string) {
	c.edit(ctx, func(d *Draft) { d.Content = content })
}

// SetTags заменяет теги черновика.
func (c *AutosaveController) SetTags(ctx context.Context, tags []string) {
	c.edit(ctx, func(d *Draft) { d.Tags = entities.NormalizeTags(tags) })
}

// AddTag добавляет тег. Пустой или повторный тег не считается правкой.
func (c *AutosaveController) AddTag(ctx context.Context, tag string) bool {
	tag = strings.TrimSpace(tag)
	if c.activeID == "" || tag == "" || slices.Contains(c.draft.Tags, tag) {
		return false
	}
	c.edit(ctx, func(d *Draft) { d.Tags = append(d.Tags, tag) })
	return true
}

// RemoveTag удаляет тег из черновика.
func (c *AutosaveController) RemoveTag(ctx context.Context, tag string) bool {
	i := slices.Index(c.draft.Tags, tag)
	if c.activeID == "" || i < 0 {
		return false
	}
	c.edit(ctx, func(d *Draft) { d.Tags = slices.Delete(d.Tags, i, i+1) })
	return true
}

// RemoveLastTag удаляет последний тег черновика.
func (c *AutosaveController) RemoveLastTag(ctx context.Context) bool {
	if len(c.draft.Tags) == 0 {
		return false
	}
	return c.RemoveTag(ctx, c.draft.Tags[len(c.draft.Tags)-1])
}

// SetFolder переносит черновик в папку; nil означает "без папки".
func (c *AutosaveController) SetFolder(ctx context.Context, folderID *string) {
	c.edit(ctx, func(d *Draft) { d.FolderID = entities.CloneID(folderID) })
}

// DetachFolder убирает из черновика ссылку на удаленную папку.
// Это не правка пользователя, поэтому таймер не перезапускается.
func (c *AutosaveController) DetachFolder(folderID string) {
	if c.draft.FolderID != nil && *c.draft.FolderID == folderID {
		c.draft.FolderID = nil
	}
}

// Flush немедленно сохраняет ожидающий черновик. Возвращает true, если было что сохранять.
func (c *AutosaveController) Flush(ctx context.Context) bool {
	if c.state != AutosaveEditing {
		return false
	}
	c.stopTimer()
	c.commit(ctx)
	return true
}

// State возвращает текущее состояние.
func (c *AutosaveController) State() AutosaveState {
	return c.state
}

// ActiveID возвращает ID активной заметки или пустую строку.
func (c *AutosaveController) ActiveID() string {
	return c.activeID
}

// Draft возвращает копию черновика.
func (c *AutosaveController) Draft() Draft {
	return c.draft.clone()
}

func (c *AutosaveController) edit(ctx context.Context, apply func(d *Draft)) {
	if c.activeID == "" {
		return
	}
	apply(&c.draft)
	c.state = AutosaveEditing

	c.stopTimer()
	commitCtx := context.WithoutCancel(ctx)
	c.timer = c.scheduler.AfterFunc(c.delay, func() {
		c.timer = nil
		c.commit(commitCtx)
	})
}

func (c *AutosaveController) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// commit сохраняет черновик, только если он отличается от сохраненной заметки.
func (c *AutosaveController) commit(ctx context.Context) {
	c.state = AutosaveIdle
	log := logger.Log(ctx).With(zap.String("note_id", c.activeID))

	stored, ok := c.notes.Get(c.activeID)
	if !ok {
		log.Debug(ctx, LogDraftOrphaned)
		return
	}

	candidate := stored.Clone()
	candidate.Title = c.draft.Title
	candidate.Content = c.draft.Content
	candidate.Tags = entities.NormalizeTags(c.draft.Tags)
	candidate.FolderID = entities.CloneID(c.draft.FolderID)
	if strings.TrimSpace(candidate.Title) == "" {
		candidate.Title = entities.DefaultNoteTitle
	}

	if candidate.SameContent(stored) {
		log.Debug(ctx, LogDraftUnchanged)
		return
	}

	c.notes.Update(ctx, candidate)
	log.Debug(ctx, LogDraftCommitted)
}
