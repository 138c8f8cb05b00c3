package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/validate"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := Record{RunID: uuid.New(), Timestamp: base.Add(time.Duration(i) * time.Minute), Source: "orders.csv", Rows: i}
		ids = append(ids, r.RunID)
		require.NoError(t, s.Put(r))
	}

	all, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].RunID)
	assert.Equal(t, ids[0], all[2].RunID)

	two, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	got, err := s.Get(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rows)
	assert.True(t, got.Timestamp.Equal(base.Add(time.Minute)))

	_, err = s.Get(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFromReport(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "a", Type: frame.KindInt, Nullable: true}}}
	f, err := frame.FromRows(s, [][]any{{1}, {nil}})
	require.NoError(t, err)
	opts := validate.DefaultOptions()
	opts.Rules = validate.RuleSet{}.Add(validate.NonNullable{Columns: []string{"a"}})
	rep, err := validate.Run(f, opts)
	require.NoError(t, err)

	rec := FromReport(rep, "mem")
	assert.Equal(t, rep.RunID, rec.RunID)
	assert.Equal(t, 2, rec.Rows)
	assert.Equal(t, 1, rec.CleanRows)
	assert.False(t, rec.Pass)
	require.Len(t, rec.Failures, 1)
	assert.Equal(t, Failure{Column: "a", Type: "non_nullable", Rule: "non_nullable", Count: 1, ErrorRate: 0.5, Severity: "hard"}, rec.Failures[0])

	store := openStore(t)
	require.NoError(t, store.Put(rec))
	back, err := store.Get(rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, rec.Failures, back.Failures)
}

func TestReopenKeepsRuns(t *testing.T) {
	p := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(p)
	require.NoError(t, err)
	require.NoError(t, s.Put(Record{RunID: uuid.New(), Timestamp: time.Now()}))
	require.NoError(t, s.Close())

	s, err = Open(p)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	all, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
