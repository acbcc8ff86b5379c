package resumes

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayKumar0077/Resumelit/internal/events"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

func TestStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := openTestStore(t, Options{Clock: clock.Now})

	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "My Resume", Method: MethodForm, Payload: Payload{"skills": "Go"}})
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, rec.SchemaVersion)
	assert.True(t, rec.CreatedAt.Equal(rec.UpdatedAt))
	assert.Equal(t, int64(1), rec.Revision)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	if diff := cmp.Diff(rec, list[0]); diff != "" {
		t.Fatalf("listed record mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(time.Minute)
	updated, err := s.Update(ctx, rec.ID, Patch{Title: ptr("Updated")})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	require.NoError(t, s.Delete(ctx, rec.ID))
	_, err = s.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateIssuesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "r", Method: MethodChat, Payload: Payload{}})
		require.NoError(t, err)
		require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})

	cases := []CreateInput{
		{OwnerID: "u1", Title: "   ", Method: MethodForm, Payload: Payload{}},
		{OwnerID: "", Title: "T", Method: MethodForm, Payload: Payload{}},
		{OwnerID: "u1", Title: "T", Method: "fax", Payload: Payload{}},
		{OwnerID: "u1", Title: "T", Method: MethodForm},
	}
	for _, in := range cases {
		_, err := s.Create(ctx, in)
		assert.ErrorIs(t, err, ErrValidation, "input %+v", in)
	}

	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "  Padded  ", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)
	assert.Equal(t, "Padded", rec.Title)
}

func TestCreateRechecksCallerSuppliedID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})

	_, err := s.Create(ctx, CreateInput{ID: "fixed", OwnerID: "u1", Title: "a", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateInput{ID: "fixed", OwnerID: "u2", Title: "b", Method: MethodChat, Payload: Payload{}})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.Get(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
}

type repeatIDs struct{ ids []string }

func (r *repeatIDs) NewID() string {
	id := r.ids[0]
	if len(r.ids) > 1 {
		r.ids = r.ids[1:]
	}
	return id
}

func TestCreateRetriesGeneratedIDCollision(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{IDs: &repeatIDs{ids: []string{"a", "a", "b"}}})

	first, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "1", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)
	second, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "2", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

func TestUpdatedAtIsStrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := openTestStore(t, Options{Clock: clock.Now})

	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)

	prev := rec.UpdatedAt
	steps := []time.Duration{0, time.Second, -time.Hour, 0, time.Millisecond}
	for i, d := range steps {
		clock.Advance(d)
		got, err := s.Update(ctx, rec.ID, Patch{Title: ptr("t" + string(rune('a'+i)))})
		require.NoError(t, err)
		assert.True(t, got.UpdatedAt.After(prev), "step %d: %v not after %v", i, got.UpdatedAt, prev)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
		assert.Equal(t, int64(i+2), got.Revision)
		prev = got.UpdatedAt
	}
}

func TestUpdateRejectsImmutableFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodForm, Payload: Payload{"a": "b"}})
	require.NoError(t, err)

	now := time.Now()
	patches := map[string]Patch{
		"id":            {ID: ptr("other")},
		"ownerId":       {OwnerID: ptr("u2")},
		"method":        {Method: ptr(MethodChat)},
		"createdAt":     {CreatedAt: &now},
		"updatedAt":     {UpdatedAt: &now},
		"schemaVersion": {SchemaVersion: ptr(1)},
		"revision":      {Revision: ptr(int64(9))},
		"ownerId same":  {OwnerID: ptr("u1"), Title: ptr("new")},
	}
	for name, p := range patches {
		t.Run(name, func(t *testing.T) {
			_, err := s.Update(ctx, rec.ID, p)
			require.ErrorIs(t, err, ErrImmutableField)
			var fieldErr ImmutableFieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, strings.TrimSuffix(name, " same"), fieldErr.Field)

			got, err := s.Get(ctx, rec.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(rec, got); diff != "" {
				t.Fatalf("record changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOperationsOnUnknownIDAreNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, "missing", Patch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTwiceIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodUpload, Payload: Payload{}})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))
	assert.ErrorIs(t, s.Delete(ctx, rec.ID), ErrNotFound)
}

func TestPartialUpdatePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := openTestStore(t, Options{Clock: clock.Now})
	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodChat, Payload: Payload{"summary": "hi", "n": 2}})
	require.NoError(t, err)

	clock.Advance(time.Second)
	got, err := s.Update(ctx, rec.ID, Patch{Title: ptr("X")})
	require.NoError(t, err)

	want := rec
	want.Title = "X"
	want.UpdatedAt = got.UpdatedAt
	want.Revision = 2
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected change (-want +got):\n%s", diff)
	}

	clock.Advance(time.Second)
	got, err = s.Update(ctx, rec.ID, Patch{Payload: Payload{"summary": "bye"}})
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, Payload{"summary": "bye"}, got.Payload)
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodChat, Payload: Payload{}})
	require.NoError(t, err)

	_, err = s.Update(ctx, rec.ID, Patch{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Update(ctx, rec.ID, Patch{Title: ptr(" ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateExpectedRevision(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodChat, Payload: Payload{}})
	require.NoError(t, err)

	_, err = s.Update(ctx, rec.ID, Patch{Title: ptr("a"), ExpectedRevision: 1})
	require.NoError(t, err)
	_, err = s.Update(ctx, rec.ID, Patch{Title: ptr("b"), ExpectedRevision: 1})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}

func TestReturnedRecordsDoNotAliasStoredState(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	rec, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodChat, Payload: Payload{"nested": map[string]any{"k": "v"}}})
	require.NoError(t, err)

	rec.Payload["nested"].(map[string]any)["k"] = "changed"
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Payload["nested"].(map[string]any)["k"])
}

func TestListScopesByOwnerAndSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := openTestStore(t, Options{Clock: clock.Now, IDs: &seqIDs{}})

	a, _ := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "a", Method: MethodChat, Payload: Payload{}})
	b, _ := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "b", Method: MethodChat, Payload: Payload{}})
	clock.Advance(time.Second)
	c, _ := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "c", Method: MethodForm, Payload: Payload{}})
	_, _ = s.Create(ctx, CreateInput{OwnerID: "u2", Title: "other", Method: MethodForm, Payload: Payload{}})

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	ids := []string{}
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids)

	empty, err := s.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.List(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListReflectsWritesFromAnotherStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "resumes.json")
	m1, err := NewFileMedium(path)
	require.NoError(t, err)
	m2, err := NewFileMedium(path)
	require.NoError(t, err)
	s1 := openTestStore(t, Options{Medium: m1})
	s2 := openTestStore(t, Options{Medium: m2})

	rec, err := s1.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)

	list, err := s2.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s2.Update(ctx, rec.ID, Patch{Title: ptr("from s2")})
	require.NoError(t, err)
	got, err := s1.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "from s2", got.Title)
}

func TestListSurfacesCorruptRecords(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMedium()
	require.NoError(t, m.Insert(ctx, newItem("bad", "u1", []byte(`{"id":"bad","ownerId":"u1"}`))))
	s := openTestStore(t, Options{Medium: m})

	_, err := s.List(ctx, "u1")
	assert.ErrorIs(t, err, ErrSchema)
}

func TestGetUpgradesOldRecordWithoutWritingBack(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMedium()
	legacy := `{"id":"old","ownerId":"u1","title":"Legacy","method":"form","schemaVersion":1,"payload":{"skills":"Go, SQL"},"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	require.NoError(t, m.Insert(ctx, newItem("old", "u1", []byte(legacy))))
	s := openTestStore(t, Options{Medium: m})

	got, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, got.SchemaVersion)
	assert.Equal(t, []any{"Go", "SQL"}, got.Payload["skills"])

	item, err := m.Load(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, legacy, string(item.Body))

	_, err = s.Update(ctx, "old", Patch{Title: ptr("Renamed")})
	require.NoError(t, err)
	item, err = m.Load(ctx, "old")
	require.NoError(t, err)
	assert.Contains(t, string(item.Body), `"schemaVersion":3`)
}

func TestGetFutureRecordIsUnsupported(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMedium()
	future := `{"id":"new","ownerId":"u1","title":"T","method":"form","schemaVersion":99,"payload":{},"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	require.NoError(t, m.Insert(ctx, newItem("new", "u1", []byte(future))))
	s := openTestStore(t, Options{Medium: m})

	_, err := s.Get(ctx, "new")
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
	_, err = s.Update(ctx, "new", Patch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestStorePublishesEvents(t *testing.T) {
	ctx := context.Background()
	rec := &events.Recorder{}
	s := openTestStore(t, Options{Events: rec})

	r, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)
	_, err = s.Update(ctx, r.ID, Patch{Title: ptr("u")})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, r.ID))
	_, _ = s.Update(ctx, r.ID, Patch{Title: ptr("gone")})

	got := rec.Events()
	require.Len(t, got, 3)
	assert.Equal(t, events.KindCreated, got[0].Kind)
	assert.Equal(t, events.KindUpdated, got[1].Kind)
	assert.Equal(t, int64(2), got[1].Revision)
	assert.Equal(t, events.KindDeleted, got[2].Kind)
	for _, ev := range got {
		assert.Equal(t, r.ID, ev.RecordID)
		assert.Equal(t, "u1", ev.OwnerID)
	}
}

func TestDeleteEventCarriesSourceKey(t *testing.T) {
	ctx := context.Background()
	rec := &events.Recorder{}
	s := openTestStore(t, Options{Events: rec})

	r, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "cv", Method: MethodUpload, Payload: Payload{
		"sourceFile": map[string]any{"key": "uploads/u1/abc/cv.pdf"},
	}})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, r.ID))

	got := rec.Events()
	require.Len(t, got, 2)
	assert.Empty(t, got[0].SourceKey)
	assert.Equal(t, "uploads/u1/abc/cv.pdf", got[1].SourceKey)
}

func TestPublishFailureIsLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	hook := test.NewLocal(telemetry.Logger())
	defer hook.Reset()
	s := openTestStore(t, Options{Events: &events.Recorder{Err: errors.New("broker down")}})

	_, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "record event publish failed", entry.Message)
	assert.Equal(t, "u1", entry.Data["owner_id"])
	assert.Equal(t, "broker down", entry.Data["error"])
}

func TestClosedStoreRejectsCalls(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{Medium: NewMemoryMedium()})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Create(ctx, CreateInput{OwnerID: "u1", Title: "t", Method: MethodForm, Payload: Payload{}})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List(ctx, "u1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, "x"), ErrClosed)
}

func TestOpenRequiresMedium(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	assert.Error(t, err)
}

func TestImportLegacy(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{IDs: &seqIDs{}})
	_, err := s.Create(ctx, CreateInput{ID: "taken", OwnerID: "u9", Title: "t", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)

	dump := `[
		{"id":"1689000000001","userId":"user-1","title":"Chat Resume","method":"chat","createdAt":"2023-05-15T10:30:00Z","lastUpdated":"2023-06-20T14:45:00Z","data":{"skills":"Go"}},
		{"userId":"user-1","title":"No Id","method":"form","createdAt":"2023-07-10T09:15:00Z","lastUpdated":"2023-07-10T09:15:00Z","data":{}},
		{"id":"taken","userId":"user-1","title":"Dup","method":"form","createdAt":"2023-07-10T09:15:00Z","lastUpdated":"2023-07-10T09:15:00Z","data":{}},
		{"id":"broken","title":"No data","method":"form","createdAt":"2023-07-10T09:15:00Z","lastUpdated":"2023-07-10T09:15:00Z"},
		"not an object"
	]`
	res, err := s.ImportLegacy(ctx, "u1", strings.NewReader(dump))
	require.NoError(t, err)

	require.Len(t, res.Imported, 2)
	assert.Equal(t, "1689000000001", res.Imported[0].ID)
	assert.Equal(t, "u1", res.Imported[0].OwnerID)
	assert.Equal(t, CurrentSchemaVersion, res.Imported[0].SchemaVersion)
	assert.Equal(t, []any{"Go"}, res.Imported[0].Payload["skills"])
	assert.NotEmpty(t, res.Imported[1].ID)

	require.Len(t, res.Skipped, 3)
	assert.ErrorIs(t, res.Skipped[0], ErrConflict)
	assert.Equal(t, "taken", res.Skipped[0].ID)
	assert.ErrorIs(t, res.Skipped[1], ErrSchema)
	assert.ErrorIs(t, res.Skipped[2], ErrDecode)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestImportLegacyKeepsNumericIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{IDs: &seqIDs{}})

	dump := `[
		{"id":1689000000002,"title":"Numeric","method":"form","createdAt":"2023-05-15T10:30:00Z","lastUpdated":"2023-06-20T14:45:00Z","data":{}},
		{"id":{"n":1},"title":"Object id","method":"form","createdAt":"2023-05-15T10:30:00Z","lastUpdated":"2023-06-20T14:45:00Z","data":{}},
		{"id":null,"title":"Null id","method":"form","createdAt":"2023-05-15T10:30:00Z","lastUpdated":"2023-06-20T14:45:00Z","data":{}}
	]`
	res, err := s.ImportLegacy(ctx, "u1", strings.NewReader(dump))
	require.NoError(t, err)

	require.Len(t, res.Imported, 2)
	assert.Equal(t, "1689000000002", res.Imported[0].ID)
	assert.NotEmpty(t, res.Imported[1].ID)
	assert.NotEqual(t, "1689000000002", res.Imported[1].ID)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, res.Skipped[0].Index)
	assert.ErrorIs(t, res.Skipped[0], ErrDecode)

	got, err := s.Get(ctx, "1689000000002")
	require.NoError(t, err)
	assert.Equal(t, "Numeric", got.Title)

	again, err := s.ImportLegacy(ctx, "u1", strings.NewReader(`[{"id":"1689000000002","title":"Again","method":"form","createdAt":"2023-05-15T10:30:00Z","lastUpdated":"2023-06-20T14:45:00Z","data":{}}]`))
	require.NoError(t, err)
	require.Len(t, again.Skipped, 1)
	assert.ErrorIs(t, again.Skipped[0], ErrConflict)
}

func TestImportLegacyRejectsBadDump(t *testing.T) {
	s := openTestStore(t, Options{})
	_, err := s.ImportLegacy(context.Background(), "u1", strings.NewReader(`"nope"`))
	assert.ErrorIs(t, err, ErrDecode)
	_, err = s.ImportLegacy(context.Background(), "u1", strings.NewReader(``))
	assert.ErrorIs(t, err, ErrValidation)
}
