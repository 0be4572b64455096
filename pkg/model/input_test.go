package model

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = `{
	"n_timeslots": 4,
	"n_rooms": 1,
	"n_courses": 4,
	"professors": [[1, 2, 3, 4]],
	"students": [[1, 3], [2, 1]]
}`

func TestConstraintsFromReader(t *testing.T) {
	t.Run("Correct flow", func(t *testing.T) {
		constraints, err := ConstraintsFromReader(strings.NewReader(sampleInput))

		require.NoError(t, err)
		assert.Equal(t, 4, constraints.Timeslots())
		assert.Equal(t, 1, constraints.Rooms())
		assert.Equal(t, 4, constraints.Courses())
		assert.Equal(t, []CourseSet{{1, 2, 3, 4}}, constraints.Professors())
		assert.Equal(t, []CourseSet{{1, 3}, {1, 2}}, constraints.Students())
	})

	t.Run("Malformed json", func(t *testing.T) {
		_, err := ConstraintsFromReader(strings.NewReader(`{"n_timeslots": `))
		assert.Error(t, err)
	})

	t.Run("Unknown field", func(t *testing.T) {
		_, err := ConstraintsFromReader(strings.NewReader(`{"n_timeslots": 1, "n_rooms": 1, "n_courses": 0, "teachers": []}`))
		assert.Error(t, err)
	})

	t.Run("Capacity violation", func(t *testing.T) {
		_, err := ConstraintsFromReader(strings.NewReader(`{"n_timeslots": 1, "n_rooms": 1, "n_courses": 2, "professors": [[1, 2]], "students": []}`))

		var violation *CapacityViolationError
		assert.True(t, errors.As(err, &violation))
	})
}

func TestWriteJson(t *testing.T) {
	constraints, err := ConstraintsFromReader(strings.NewReader(sampleInput))
	require.NoError(t, err)

	var buffer bytes.Buffer
	require.NoError(t, constraints.WriteJson(&buffer))
	reread, err := ConstraintsFromReader(&buffer)

	require.NoError(t, err)
	assert.Equal(t, constraints, reread)
}

func TestConstraintsFromJson(t *testing.T) {
	file := filepath.Join(t.TempDir(), "constraints.json")
	require.NoError(t, os.WriteFile(file, []byte(sampleInput), 0666))

	constraints, err := ConstraintsFromJson(file)

	require.NoError(t, err)
	assert.Equal(t, 4, constraints.Courses())

	_, err = ConstraintsFromJson(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
