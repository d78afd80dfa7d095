package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/notes/adapters/storage/memory"
	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/ports/services"
)

var baseTime = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

// fakeClock продвигается на step при каждом вызове Now.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime, step: time.Second}
}

func (c *fakeClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// sequentialIDs выдает prefix-1, prefix-2, ...
func sequentialIDs(prefix string) services.IDGenerator {
	n := 0
	return services.IDGeneratorFunc(func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	})
}

// manualScheduler запускает отложенные вызовы только по команде теста.
type manualScheduler struct {
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) services.Timer {
	t := &manualTimer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// pending возвращает количество активных таймеров.
func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fireAll срабатывает все активные таймеры.
func (s *manualScheduler) fireAll() {
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.fn()
		}
	}
}

// mockKVStore - KVStore на testify/mock.
type mockKVStore struct {
	mock.Mock
}

func (m *mockKVStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockKVStore) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockKVStore) Close() error {
	return m.Called().Error(0)
}

type fixture struct {
	kv        *memory.KVStore
	gateway   *app.PersistenceGateway
	clock     *fakeClock
	scheduler *manualScheduler
	notes     *app.NoteStore
	folders   *app.FolderStore
	autosave  *app.AutosaveController
	workspace *app.Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithKV(t, memory.NewKVStore(), "")
}

func newFixtureWithKV(t *testing.T, kv *memory.KVStore, idPrefix string) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		kv:        kv,
		gateway:   app.NewPersistenceGateway(kv),
		clock:     newFakeClock(),
		scheduler: &manualScheduler{},
	}
	f.notes = app.NewNoteStore(ctx, f.gateway, f.clock, sequentialIDs(idPrefix+"note"))
	f.folders = app.NewFolderStore(ctx, f.gateway, f.notes, f.clock, sequentialIDs(idPrefix+"folder"))
	f.autosave = app.NewAutosaveController(f.notes, f.scheduler, time.Second)

	locale, err := app.ParseLocale("en")
	require.NoError(t, err)
	f.workspace = app.NewWorkspace(f.notes, f.folders, f.autosave, app.NewQueryEngine(locale))
	return f
}

// reload строит новые хранилища поверх тех же данных, как при перезапуске.
func (f *fixture) reload(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithKV(t, f.kv, "reloaded-")
}
