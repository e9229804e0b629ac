package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name    string   `csv:"name"`
	Hidden  string   `csv:"-"`
	Tags    []string `csv:"tags"`
	Count   int
	private string
}

func TestStructToCsvHeader(t *testing.T) {
	assert.Equal(t, []string{"name", "tags", "Count"}, StructToCsvHeader(reflect.TypeOf(row{})))
	assert.Equal(t, []string{"name", "tags", "Count"}, StructToCsvHeader(reflect.TypeOf(&row{})))
}

func TestWriteCsv(t *testing.T) {
	var buf bytes.Buffer
	data := []row{
		{Name: "a", Hidden: "x", Tags: []string{"one", "two"}, Count: 3},
		{Name: "b, c"},
	}

	err := WriteCsv(&buf, ',', StructToCsvHeader(reflect.TypeOf(row{})), data)
	require.NoError(t, err)
	assert.Equal(t, "name,tags,Count\na,one;two,3\n\"b, c\",,0\n", buf.String())
}

func TestWriteCsvTabs(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCsv(&buf, '\t', []string{"Count", "name"}, []*row{{Name: "a", Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, "Count\tname\n1\ta\n", buf.String())
}

func TestWriteCsvRejectsNonStructs(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCsv(&buf, ',', []string{"x"}, []int{1})
	assert.EqualError(t, err, "data must be a slice of structs")
}

func TestWriteToCsvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteToCsvFile(path, []string{"name"}, []row{{Name: "a"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name\na\n", string(data))
}

func TestWriteToCsvFileBadPath(t *testing.T) {
	err := WriteToCsvFile(filepath.Join(t.TempDir(), "missing", "out.csv"), []string{"name"}, []row{})
	assert.Error(t, err)
}
