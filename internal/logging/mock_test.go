package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	mock := NewMockLogger()
	err := errors.New("broken")

	mock.WithField(FieldFile, "a.csv").WithError(err).Warn("file skipped")
	mock.Info("done", Field{Key: FieldCount, Value: 3})

	entries := mock.GetEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, err, entries[0].Error)
	v, ok := entries[0].FieldValue(FieldFile)
	require.True(t, ok)
	assert.Equal(t, "a.csv", v)

	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.GetEntriesByLevel("WARN"), 1)

	mock.Clear()
	assert.Empty(t, mock.GetEntries())
}

func TestMockLogger_ZeroValueIsUsable(t *testing.T) {
	var mock MockLogger
	mock.Error("oops")
	assert.True(t, mock.HasEntry("ERROR", "oops"))
}
