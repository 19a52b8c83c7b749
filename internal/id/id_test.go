package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunIDSortsByTime(t *testing.T) {
	at := time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)

	a := NewRunID(at)
	b := NewRunID(at)
	c := NewRunID(at.Add(time.Second))

	assert.Len(t, a, 26)
	assert.Less(t, a, b, "same millisecond stays monotonic")
	assert.Less(t, b, c)

	got, err := Time(a)
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestTimeRejectsGarbage(t *testing.T) {
	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}
