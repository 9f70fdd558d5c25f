package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterPriced(t *testing.T) {
	in := []Listing{priced("a", "A", 10), {ID: "b", Title: "B"}, priced("c", "C", 0)}

	out := FilterPriced(in)

	assert.Equal(t, []string{"a", "c"}, ids(out))
	for _, l := range out {
		assert.True(t, l.HasPrice())
	}
}

func TestSortByTitle(t *testing.T) {
	in := []Listing{priced("3", "Sykkel", 1), priced("1", "Bord", 1), priced("2", "Lampe", 1)}

	out := SortByTitle(in)

	assert.Equal(t, []string{"1", "2", "3"}, ids(out))
	assert.Equal(t, "3", in[0].ID, "input must stay untouched")
}

func TestSortByTitle_NorwegianLettersLast(t *testing.T) {
	in := []Listing{priced("aa", "Åker", 1), priced("z", "Zebra", 1), priced("o", "Ørret", 1)}

	out := SortByTitle(in)

	assert.Equal(t, []string{"z", "o", "aa"}, ids(out))
}

func TestSortByTitle_NorwegianAlphabetOrder(t *testing.T) {
	in := []Listing{
		priced("aa", "åker", 1),
		priced("oe", "Ørret", 1),
		priced("ae", "Ærfugl", 1),
		priced("y", "Yacht", 1),
	}

	out := SortByTitle(in)

	assert.Equal(t, []string{"y", "ae", "oe", "aa"}, ids(out))

	seq, pos := InsertSorted(out, priced("z", "Zebra", 1))
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"y", "z", "ae", "oe", "aa"}, ids(seq))
}

func TestInsertSorted(t *testing.T) {
	seq := []Listing{priced("a", "A", 1), priced("c", "C", 1)}

	seq, pos := InsertSorted(seq, priced("b", "B", 1))

	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"a", "b", "c"}, ids(seq))
}

func TestParseDisplayState(t *testing.T) {
	s, err := ParseDisplayState("")
	require.NoError(t, err)
	assert.Equal(t, StateAll, s)

	s, err = ParseDisplayState("Favorites")
	require.NoError(t, err)
	assert.Equal(t, StateFavorites, s)

	_, err = ParseDisplayState("sold")
	assert.ErrorIs(t, err, ErrUnknownDisplayState)
}

func TestStorageErrorIs(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StorageError{Op: "save", Path: "/tmp/f.json", Err: cause})

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "save")
}
