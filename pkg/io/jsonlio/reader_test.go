package jsonlio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/pkg/frame"
)

const events = `{"zone":"eu","id":1,"score":2,"ok":true,"at":"2024-05-01T10:00:00Z"}
{"zone":null,"id":2,"score":2.5,"ok":false,"at":"2024-05-02T10:00:00Z","extra":{"a":1}}
{"id":3,"ok":true}
`

func TestInferAndRead(t *testing.T) {
	r := NewReader(strings.NewReader(events), ReaderOptions{})
	schema, err := r.InferSchema()
	require.NoError(t, err)
	var names []string
	kinds := map[string]frame.Kind{}
	for _, c := range schema.Columns {
		names = append(names, c.Name)
		kinds[c.Name] = c.Type
	}
	assert.Equal(t, []string{"zone", "id", "score", "ok", "at", "extra"}, names)
	assert.Equal(t, frame.KindString, kinds["zone"])
	assert.Equal(t, frame.KindInt, kinds["id"])
	assert.Equal(t, frame.KindFloat, kinds["score"])
	assert.Equal(t, frame.KindBool, kinds["ok"])
	assert.Equal(t, frame.KindTime, kinds["at"])
	assert.Equal(t, frame.KindString, kinds["extra"])

	f, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 3, f.Rows())
	v, _ := f.Cell(0, "score")
	assert.Equal(t, 2.0, v)
	_, ok := f.Cell(1, "zone")
	assert.False(t, ok)
	v, _ = f.Cell(1, "extra")
	assert.Equal(t, `{"a":1}`, v)
	v, _ = f.Cell(0, "at")
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), v)
	_, ok = f.Cell(2, "score")
	assert.False(t, ok)
}

func TestRejectsNonObjects(t *testing.T) {
	_, err := NewReader(strings.NewReader("[1,2]\n"), ReaderOptions{}).InferSchema()
	require.Error(t, err)
}

func TestWriteKeepsOrderAndNulls(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "b", Type: frame.KindInt, Nullable: true},
		{Name: "a", Type: frame.KindString, Nullable: true},
	}}
	src, err := frame.FromRows(s, [][]any{{1, "x"}, {nil, "y"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src))
	assert.Equal(t, "{\"b\":1,\"a\":\"x\"}\n{\"b\":null,\"a\":\"y\"}\n", buf.String())

	p := filepath.Join(t.TempDir(), "rows.jsonl")
	require.NoError(t, WriteFile(p, src))
	back, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, back.ColumnNames())
	v, _ := back.Cell(0, "b")
	assert.Equal(t, int64(1), v)
}
