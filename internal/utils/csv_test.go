package utils

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type csvRecord struct {
	Name    string   `csv:"name"`
	Artists []string `csv:"artists"`
	Plays   int
	Hidden  string `csv:"-"`
}

func TestStructToCsvHeader(t *testing.T) {
	assert.Equal(t, []string{"name", "artists", "Plays"}, StructToCsvHeader(reflect.TypeOf(csvRecord{})))
	assert.Equal(t, []string{"name", "artists", "Plays"}, StructToCsvHeader(reflect.TypeOf(&csvRecord{})))
}

func TestWriteCsv(t *testing.T) {
	var buf bytes.Buffer
	data := []csvRecord{
		{Name: "Under Pressure", Artists: []string{"Queen", "David Bowie"}, Plays: 3, Hidden: "x"},
		{Name: "Creep, live", Plays: 0},
	}

	err := WriteCsv(&buf, StructToCsvHeader(reflect.TypeOf(csvRecord{})), data)
	require.NoError(t, err)

	assert.Equal(t, "name,artists,Plays\nUnder Pressure,Queen;David Bowie,3\n\"Creep, live\",,0\n", buf.String())
}

func TestWriteCsv_HeaderSubset(t *testing.T) {
	var buf bytes.Buffer

	err := WriteCsv(&buf, []string{"Plays", "name"}, []*csvRecord{{Name: "A", Plays: 1}})
	require.NoError(t, err)

	assert.Equal(t, "Plays,name\n1,A\n", buf.String())
}

func TestWriteCsv_RejectsNonStructs(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCsv(&buf, []string{"value"}, []int{1})
	assert.Error(t, err)
}
