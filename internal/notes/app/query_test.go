package app_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"pgregory.net/rapid"

	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/domain/entities"
)

func makeNote(id, title, content string, folderID *string, created, updated time.Duration, tags ...string) *entities.Note {
	if tags == nil {
		tags = []string{}
	}
	return &entities.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		Tags:      tags,
		FolderID:  folderID,
		CreatedAt: baseTime.Add(created),
		UpdatedAt: baseTime.Add(updated),
	}
}

func ids(notes []*entities.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func newEngine() *app.QueryEngine {
	return app.NewQueryEngine(language.English)
}

func TestQueryEngine_Filters(t *testing.T) {
	folders := []*entities.Folder{{ID: "f1", Name: "Home"}, {ID: "f2", Name: "Work"}}
	notes := []*entities.Note{
		makeNote("n1", "Groceries", "milk and eggs", ptr("f1"), 0, 3*time.Minute, "home", "shopping"),
		makeNote("n2", "Standup", "discuss GROCERY budget", ptr("f2"), time.Minute, 2*time.Minute, "work"),
		makeNote("n3", "Ideas", "", nil, 2*time.Minute, time.Minute, "home"),
	}

	tests := []struct {
		name    string
		filters app.Filters
		want    []string
	}{
		{name: "no filters keeps everything", filters: app.DefaultFilters(), want: []string{"n1", "n2", "n3"}},
		{name: "search matches title or content ignoring case", filters: app.Filters{SearchTerm: "grocer"}, want: []string{"n1", "n2"}},
		{name: "search without match", filters: app.Filters{SearchTerm: "xyz"}, want: []string{}},
		{name: "single tag", filters: app.Filters{Tags: []string{"home"}}, want: []string{"n1", "n3"}},
		{name: "tags are conjunctive", filters: app.Filters{Tags: []string{"home", "shopping"}}, want: []string{"n1"}},
		{name: "tag nobody has", filters: app.Filters{Tags: []string{"home", "work"}}, want: []string{}},
		{name: "folder restriction", filters: app.Filters{FolderID: ptr("f2")}, want: []string{"n2"}},
		{name: "unknown folder matches nothing", filters: app.Filters{FolderID: ptr("gone")}, want: []string{}},
		{name: "combined", filters: app.Filters{SearchTerm: "milk", Tags: []string{"home"}, FolderID: ptr("f1")}, want: []string{"n1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEngine().FilteredAndSorted(notes, folders, tt.filters)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestQueryEngine_Sort(t *testing.T) {
	notes := []*entities.Note{
		makeNote("banana", "Banana", "", nil, 0, 2*time.Minute),
		makeNote("apple", "apple", "", nil, time.Minute, time.Minute),
		makeNote("cherry", "Cherry", "", nil, 2*time.Minute, 3*time.Minute),
	}

	tests := []struct {
		name      string
		field     app.SortField
		direction app.SortDirection
		want      []string
	}{
		{"title ascending uses collation", app.SortByTitle, app.SortAsc, []string{"apple", "banana", "cherry"}},
		{"title descending", app.SortByTitle, app.SortDesc, []string{"cherry", "banana", "apple"}},
		{"created ascending", app.SortByCreatedAt, app.SortAsc, []string{"banana", "apple", "cherry"}},
		{"created descending", app.SortByCreatedAt, app.SortDesc, []string{"cherry", "apple", "banana"}},
		{"updated ascending", app.SortByUpdatedAt, app.SortAsc, []string{"apple", "banana", "cherry"}},
		{"updated descending", app.SortByUpdatedAt, app.SortDesc, []string{"cherry", "banana", "apple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEngine().FilteredAndSorted(notes, nil, app.Filters{SortBy: tt.field, Direction: tt.direction})
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("ties keep input order", func(t *testing.T) {
		same := []*entities.Note{
			makeNote("first", "Same", "", nil, 0, 0),
			makeNote("second", "Same", "", nil, 0, 0),
			makeNote("third", "Same", "", nil, 0, 0),
		}
		for _, field := range []app.SortField{app.SortByTitle, app.SortByCreatedAt, app.SortByUpdatedAt} {
			for _, dir := range []app.SortDirection{app.SortAsc, app.SortDesc} {
				got := newEngine().FilteredAndSorted(same, nil, app.Filters{SortBy: field, Direction: dir})
				assert.Equal(t, []string{"first", "second", "third"}, ids(got), "%s %s", field, dir)
			}
		}
	})

	t.Run("dates compare as instants", func(t *testing.T) {
		moscow := time.FixedZone("MSK", 3*60*60)
		earlier := makeNote("earlier", "", "", nil, 0, 0)
		later := makeNote("later", "", "", nil, 0, 0)
		later.UpdatedAt = baseTime.Add(time.Hour).In(moscow)

		got := newEngine().FilteredAndSorted([]*entities.Note{later, earlier}, nil, app.Filters{SortBy: app.SortByUpdatedAt, Direction: app.SortAsc})
		assert.Equal(t, []string{"earlier", "later"}, ids(got))
	})
}

func TestQueryEngine_DoesNotMutateInput(t *testing.T) {
	notes := []*entities.Note{
		makeNote("b", "B", "", nil, 0, 0),
		makeNote("a", "A", "", nil, 0, 0),
	}
	snapshot := slices.Clone(notes)

	newEngine().FilteredAndSorted(notes, nil, app.Filters{SortBy: app.SortByTitle, Direction: app.SortAsc})

	assert.Equal(t, snapshot, notes)
}

func TestParseSortParams(t *testing.T) {
	field, err := app.ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, app.SortByUpdatedAt, field)

	field, err = app.ParseSortField("title")
	require.NoError(t, err)
	assert.Equal(t, app.SortByTitle, field)

	_, err = app.ParseSortField("size")
	assert.ErrorIs(t, err, app.ErrInvalidSortField)

	dir, err := app.ParseSortDirection("")
	require.NoError(t, err)
	assert.Equal(t, app.SortDesc, dir)

	_, err = app.ParseSortDirection("sideways")
	assert.ErrorIs(t, err, app.ErrInvalidSortDirection)

	_, err = app.ParseLocale("not a locale!")
	assert.ErrorIs(t, err, app.ErrInvalidLocale)
}

var tagPool = []string{"home", "work", "urgent", "idea", "later"}

func noteGenerator() *rapid.Generator[*entities.Note] {
	return rapid.Custom(func(t *rapid.T) *entities.Note {
		tags := rapid.SliceOfNDistinct(rapid.SampledFrom(tagPool), 0, 3, rapid.ID[string]).Draw(t, "tags")
		var folderID *string
		if rapid.Bool().Draw(t, "filed") {
			folderID = ptr(rapid.SampledFrom([]string{"f1", "f2"}).Draw(t, "folder"))
		}
		created := time.Duration(rapid.IntRange(0, 1000).Draw(t, "created")) * time.Second
		return &entities.Note{
			ID:        rapid.StringMatching(`[a-z0-9]{8}`).Draw(t, "id"),
			Title:     rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "title"),
			Content:   rapid.StringMatching(`[A-Za-z ]{0,40}`).Draw(t, "content"),
			Tags:      tags,
			FolderID:  folderID,
			CreatedAt: baseTime.Add(created),
			UpdatedAt: baseTime.Add(created + time.Duration(rapid.IntRange(0, 1000).Draw(t, "edited"))*time.Second),
		}
	})
}

func filtersGenerator() *rapid.Generator[app.Filters] {
	return rapid.Custom(func(t *rapid.T) app.Filters {
		f := app.Filters{
			SearchTerm: rapid.StringMatching(`[a-z]{0,3}`).Draw(t, "search"),
			Tags:       rapid.SliceOfNDistinct(rapid.SampledFrom(tagPool), 0, 2, rapid.ID[string]).Draw(t, "filterTags"),
			SortBy:     rapid.SampledFrom([]app.SortField{app.SortByCreatedAt, app.SortByUpdatedAt, app.SortByTitle}).Draw(t, "sort"),
			Direction:  rapid.SampledFrom([]app.SortDirection{app.SortAsc, app.SortDesc}).Draw(t, "direction"),
		}
		if rapid.Bool().Draw(t, "scoped") {
			f.FolderID = ptr(rapid.SampledFrom([]string{"f1", "f2", "deleted"}).Draw(t, "filterFolder"))
		}
		return f
	})
}

func TestQueryEngine_Properties(t *testing.T) {
	folders := []*entities.Folder{{ID: "f1", Name: "One"}, {ID: "f2", Name: "Two"}}

	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOfN(noteGenerator(), 0, 20).Draw(t, "notes")
		filters := filtersGenerator().Draw(t, "filters")
		engine := newEngine()

		first := engine.FilteredAndSorted(notes, folders, filters)
		second := engine.FilteredAndSorted(notes, folders, filters)
		if !slices.Equal(ids(first), ids(second)) {
			t.Fatalf("query is not deterministic: %v vs %v", ids(first), ids(second))
		}

		for _, n := range first {
			if !n.HasAllTags(filters.Tags) {
				t.Fatalf("note %s lacks one of %v", n.ID, filters.Tags)
			}
			if filters.FolderID != nil && !n.InFolder(*filters.FolderID) {
				t.Fatalf("note %s is outside folder %s", n.ID, *filters.FolderID)
			}
		}

		if len(first) > len(notes) {
			t.Fatalf("result is larger than input")
		}

		if filters.SortBy != app.SortByTitle {
			for i := 1; i < len(first); i++ {
				a, b := first[i-1], first[i]
				ta, tb := a.UpdatedAt, b.UpdatedAt
				if filters.SortBy == app.SortByCreatedAt {
					ta, tb = a.CreatedAt, b.CreatedAt
				}
				if filters.Direction == app.SortAsc && ta.After(tb) {
					t.Fatalf("ascending order violated at %d", i)
				}
				if filters.Direction == app.SortDesc && ta.Before(tb) {
					t.Fatalf("descending order violated at %d", i)
				}
			}
		}
	})
}

func TestTagUniverse(t *testing.T) {
	notes := []*entities.Note{
		makeNote("n1", "", "", nil, 0, 0, "b", "a"),
		makeNote("n2", "", "", nil, 0, 0, "a", "", "c"),
		makeNote("n3", "", "", nil, 0, 0),
	}

	assert.Equal(t, []string{"b", "a", "c"}, app.TagUniverse(notes))
	assert.Equal(t, []string{}, app.TagUniverse(nil))
}
