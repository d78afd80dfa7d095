package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	notehttp "notekeeper/internal/notes/adapters/http"
	"notekeeper/internal/notes/adapters/http/dto"
	"notekeeper/internal/notes/adapters/http/middleware"
	"notekeeper/internal/notes/adapters/storage/memory"
	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/ports/services"
	"notekeeper/pkg/logger"
	"notekeeper/pkg/loop"
)

type testServer struct {
	server *fiber.App
	kv     *memory.KVStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := logger.NewContext(context.Background(), logger.NewNop())
	kv := memory.NewKVStore()

	l := loop.New(16)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = l.Run(runCtx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	gateway := app.NewPersistenceGateway(kv)
	notes := app.NewNoteStore(ctx, gateway, services.SystemClock, app.NewUUIDGenerator())
	folders := app.NewFolderStore(ctx, gateway, notes, services.SystemClock, app.NewUUIDGenerator())
	scheduler := services.SchedulerFunc(func(d time.Duration, fn func()) services.Timer {
		return l.AfterFunc(d, fn)
	})
	autosave := app.NewAutosaveController(notes, scheduler, time.Hour)
	workspace := app.NewWorkspace(notes, folders, autosave, app.NewQueryEngine(language.English))

	server := fiber.New()
	notehttp.SetupRouter(ctx, server, workspace, l)

	return &testServer{server: server, kv: kv}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := s.server.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) createNote(t *testing.T, body string) dto.Note {
	t.Helper()
	resp, data := s.do(t, http.MethodPost, "/api/v1/notes", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode[dto.Note](t, data)
}

func TestNotesLifecycle(t *testing.T) {
	s := newTestServer(t)

	note := s.createNote(t, "")
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "Untitled Note", note.Title)
	assert.Empty(t, note.Tags)
	assert.Nil(t, note.FolderID)

	resp, data := s.do(t, http.MethodPut, "/api/v1/notes/"+note.ID,
		`{"title":"Shopping","content":"milk and bread","tags":["home"," errands","home"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	updated := decode[dto.Note](t, data)
	assert.Equal(t, "Shopping", updated.Title)
	assert.Equal(t, []string{"home", "errands"}, updated.Tags)
	assert.Equal(t, note.ID, updated.ID)
	assert.True(t, note.CreatedAt.Equal(updated.CreatedAt))

	resp, data = s.do(t, http.MethodGet, "/api/v1/notes/"+note.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "milk and bread", decode[dto.Note](t, data).Content)

	stored, err := s.kv.Get(context.Background(), app.KeyNotes)
	require.NoError(t, err)
	assert.Contains(t, stored, `"title":"Shopping"`)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateMissingNoteLeavesStoreUntouched(t *testing.T) {
	s := newTestServer(t)
	s.createNote(t, "")

	before, err := s.kv.Get(context.Background(), app.KeyNotes)
	require.NoError(t, err)

	resp, _ := s.do(t, http.MethodPut, "/api/v1/notes/ghost", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	after, err := s.kv.Get(context.Background(), app.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestListNotesQuery(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"title":"Banana","content":"yellow","tags":["fruit","shop"]}`,
		`{"title":"apple","content":"red","tags":["fruit"]}`,
		`{"title":"Carrot","content":"orange","tags":["veg","shop","a","b"]}`,
	} {
		note := s.createNote(t, "")
		resp, data := s.do(t, http.MethodPut, "/api/v1/notes/"+note.ID, body)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	}

	t.Run("title ascending", func(t *testing.T) {
		resp, data := s.do(t, http.MethodGet, "/api/v1/notes?sort=title&direction=asc", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		list := decode[dto.ListNotesResponse](t, data)

		titles := make([]string, 0, len(list.Notes))
		for _, n := range list.Notes {
			titles = append(titles, n.Title)
		}
		assert.Equal(t, []string{"apple", "Banana", "Carrot"}, titles)
		assert.Equal(t, 3, list.Total)
		assert.Equal(t, []string{"veg", "shop", "a", "b", "fruit"}, list.Tags)
		assert.Equal(t, app.AllNotesLabel, list.FolderName)
		assert.False(t, list.FiltersActive)
	})

	t.Run("tags are conjunctive", func(t *testing.T) {
		_, data := s.do(t, http.MethodGet, "/api/v1/notes?tags=fruit,shop", "")
		list := decode[dto.ListNotesResponse](t, data)
		require.Len(t, list.Notes, 1)
		assert.Equal(t, "Banana", list.Notes[0].Title)
		assert.True(t, list.FiltersActive)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		_, data := s.do(t, http.MethodGet, "/api/v1/notes?search=ORANGE", "")
		list := decode[dto.ListNotesResponse](t, data)
		require.Len(t, list.Notes, 1)
		item := list.Notes[0]
		assert.Equal(t, "Carrot", item.Title)
		assert.Equal(t, []string{"veg", "shop", "a"}, item.Tags)
		assert.Equal(t, 1, item.HiddenTags)
		assert.Equal(t, "orange", item.Excerpt)
	})

	t.Run("invalid sort", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodGet, "/api/v1/notes?sort=size", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("tag universe", func(t *testing.T) {
		resp, data := s.do(t, http.MethodGet, "/api/v1/tags", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"veg", "shop", "a", "b", "fruit"}, decode[dto.TagsResponse](t, data).Tags)
	})
}

func TestFolders(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodPost, "/api/v1/folders", `{"name":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(data))

	resp, data = s.do(t, http.MethodPost, "/api/v1/folders", `{"name":"Work"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	folder := decode[dto.Folder](t, data)
	assert.Equal(t, "Work", folder.Name)

	note := s.createNote(t, `{"folderId":"`+folder.ID+`"}`)
	require.NotNil(t, note.FolderID)
	assert.Equal(t, folder.ID, *note.FolderID)

	resp, data = s.do(t, http.MethodPut, "/api/v1/folders/"+folder.ID, `{"name":"Office"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "Office", decode[dto.Folder](t, data).Name)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/folders/"+folder.ID, `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/folders/ghost", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, data = s.do(t, http.MethodGet, "/api/v1/notes?folder="+folder.ID, "")
	list := decode[dto.ListNotesResponse](t, data)
	assert.Len(t, list.Notes, 1)
	assert.Equal(t, "Office", list.FolderName)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/folders/"+folder.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, data = s.do(t, http.MethodGet, "/api/v1/notes/"+note.ID, "")
	assert.Nil(t, decode[dto.Note](t, data).FolderID)

	_, data = s.do(t, http.MethodGet, "/api/v1/folders", "")
	assert.Empty(t, decode[dto.FoldersResponse](t, data).Folders)

	_, data = s.do(t, http.MethodGet, "/api/v1/notes?folder="+folder.ID, "")
	assert.Empty(t, decode[dto.ListNotesResponse](t, data).Notes, "stale folder id matches nothing")

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/folders/"+folder.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionAutosave(t *testing.T) {
	s := newTestServer(t)

	first := s.createNote(t, "")
	second := s.createNote(t, "")

	resp, data := s.do(t, http.MethodPut, "/api/v1/session/note/"+first.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, first.ID, decode[dto.SessionResponse](t, data).ActiveNoteID)

	resp, data = s.do(t, http.MethodPatch, "/api/v1/session/draft", `{"title":"Draft title","addTag":"idea"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	session := decode[dto.SessionResponse](t, data)
	assert.Equal(t, "editing", session.State)
	require.NotNil(t, session.Draft)
	assert.Equal(t, "Draft title", session.Draft.Title)
	assert.Equal(t, []string{"idea"}, session.Draft.Tags)

	_, data = s.do(t, http.MethodGet, "/api/v1/notes/"+first.ID, "")
	assert.Equal(t, "Untitled Note", decode[dto.Note](t, data).Title, "edit is debounced")

	resp, data = s.do(t, http.MethodPut, "/api/v1/session/note/"+second.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	_, data = s.do(t, http.MethodGet, "/api/v1/notes/"+first.ID, "")
	committed := decode[dto.Note](t, data)
	assert.Equal(t, "Draft title", committed.Title, "switching notes commits immediately")
	assert.Equal(t, []string{"idea"}, committed.Tags)

	_, data = s.do(t, http.MethodPatch, "/api/v1/session/draft", `{"content":"body"}`)
	assert.Equal(t, "editing", decode[dto.SessionResponse](t, data).State)

	resp, data = s.do(t, http.MethodPost, "/api/v1/session/flush", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.FlushResponse](t, data).Committed)

	_, data = s.do(t, http.MethodGet, "/api/v1/notes/"+second.ID, "")
	assert.Equal(t, "body", decode[dto.Note](t, data).Content)

	_, data = s.do(t, http.MethodPost, "/api/v1/session/flush", "")
	assert.False(t, decode[dto.FlushResponse](t, data).Committed)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/session/note/ghost", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionFolderAndFilters(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPatch, "/api/v1/session/draft", `{"title":"x"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, data := s.do(t, http.MethodPost, "/api/v1/folders", `{"name":"Ideas"}`)
	folder := decode[dto.Folder](t, data)

	resp, data = s.do(t, http.MethodPut, "/api/v1/session/folder", `{"folderId":"`+folder.ID+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "Ideas", decode[dto.SessionResponse](t, data).FolderName)

	note := s.createNote(t, "")
	require.NotNil(t, note.FolderID, "new notes land in the selected folder")
	assert.Equal(t, folder.ID, *note.FolderID)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/session/folder", `{"folderId":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = s.do(t, http.MethodPut, "/api/v1/session/filters", `{"search":"plan","tags":["a"],"sort":"title","direction":"asc"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	filters := decode[dto.SessionResponse](t, data).Filters
	assert.Equal(t, dto.Filters{Search: "plan", Tags: []string{"a"}, Sort: "title", Direction: "asc"}, filters)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/session/filters", `{"direction":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = s.do(t, http.MethodDelete, "/api/v1/session/filters", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	filters = decode[dto.SessionResponse](t, data).Filters
	assert.Empty(t, filters.Search)
	assert.Empty(t, filters.Tags)
	assert.Equal(t, "title", filters.Sort, "clearing keeps the sort")

	resp, data = s.do(t, http.MethodPut, "/api/v1/session/folder", `{"folderId":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, app.AllNotesLabel, decode[dto.SessionResponse](t, data).FolderName)
}

func TestExportImport(t *testing.T) {
	s := newTestServer(t)

	_, data := s.do(t, http.MethodPost, "/api/v1/folders", `{"name":"Recipes"}`)
	folder := decode[dto.Folder](t, data)

	note := s.createNote(t, `{"folderId":"`+folder.ID+`"}`)
	s.do(t, http.MethodPut, "/api/v1/notes/"+note.ID,
		`{"title":"Pancakes","content":"flour, eggs","tags":["breakfast"],"folderId":"`+folder.ID+`"}`)

	resp, data := s.do(t, http.MethodGet, "/api/v1/notes/"+note.ID+"/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/markdown")
	assert.Contains(t, string(data), "title: Pancakes")
	assert.Contains(t, string(data), "folder: Recipes")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/import", strings.NewReader(string(data)))
	req.Header.Set(fiber.HeaderContentType, "text/markdown")
	importResp, err := s.server.Test(req)
	require.NoError(t, err)
	defer importResp.Body.Close()
	body, err := io.ReadAll(importResp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, importResp.StatusCode, string(body))

	imported := decode[dto.Note](t, body)
	assert.NotEqual(t, note.ID, imported.ID)
	assert.Equal(t, "Pancakes", imported.Title)
	assert.Equal(t, "flour, eggs", imported.Content)
	assert.Equal(t, []string{"breakfast"}, imported.Tags)
	require.NotNil(t, imported.FolderID)
	assert.Equal(t, folder.ID, *imported.FolderID)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/notes/import", "no front matter")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/notes/ghost/export", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	resp, err := s.server.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(middleware.HeaderRequestID))

	resp, _ = s.do(t, http.MethodGet, "/api/v1/tags", "")
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	oversized := strings.Repeat("x", 200)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set(middleware.HeaderRequestID, oversized)
	resp, err = s.server.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, oversized, resp.Header.Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	resp, _ = s.do(t, http.MethodGet, "/api/v2/notes", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type stoppedDispatcher struct{}

func (stoppedDispatcher) Do(context.Context, func()) error { return loop.ErrStopped }

func TestStoppedLoopAnswersUnavailable(t *testing.T) {
	ctx := logger.NewContext(context.Background(), logger.NewNop())
	server := fiber.New()
	notehttp.SetupRouter(ctx, server, nil, stoppedDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	resp, err := server.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
