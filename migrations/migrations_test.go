package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsHaveUpAndDown(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestSchemaKeepsOneAttendancePerLesson(t *testing.T) {
	body, err := fs.ReadFile(FS, "00001_init_schema.sql")
	require.NoError(t, err)
	schema := string(body)

	assert.Contains(t, schema, "lesson_id  UUID NOT NULL UNIQUE REFERENCES lessons (id) ON DELETE CASCADE")
	assert.Contains(t, schema, "UNIQUE (student_id, month, year)")
	assert.Contains(t, schema, "piece_id      UUID REFERENCES pieces (id) ON DELETE SET NULL")
}
