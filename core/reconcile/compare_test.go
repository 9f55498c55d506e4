package reconcile

import (
	"testing"
	"time"

	"lair-scanner/core/models"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	modified := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	base := models.File{
		Path:           "/Movies/a.mkv",
		Size:           200,
		FileModifiedAt: modified,
		Properties:     map[string]any{"url": "https://example.com"},
	}

	t.Run("Identical", func(t *testing.T) {
		change := Compare(base, base)
		assert.Equal(t, models.ChangeIdentical, change.Kind)
		assert.Nil(t, change.Previous)
		assert.Equal(t, "/Movies/a.mkv", change.Path)
	})

	t.Run("SubSecondTimestampsAreIdentical", func(t *testing.T) {
		local := base
		local.FileModifiedAt = modified.Add(700 * time.Millisecond)
		assert.Equal(t, models.ChangeIdentical, Compare(local, base).Kind)
	})

	t.Run("Size", func(t *testing.T) {
		remote := base
		remote.Size = 100

		change := Compare(base, remote)
		assert.Equal(t, models.ChangeModified, change.Kind)
		assert.Equal(t, map[string]any{models.AttrSize: int64(100)}, change.Previous)
		assert.Equal(t, int64(200), change.File.Size)
	})

	t.Run("ModifiedAt", func(t *testing.T) {
		remote := base
		remote.FileModifiedAt = modified.Add(-time.Hour)

		change := Compare(base, remote)
		assert.Equal(t, models.ChangeModified, change.Kind)
		assert.Equal(t, map[string]any{models.AttrModifiedAt: remote.FileModifiedAt}, change.Previous)
	})

	t.Run("Properties", func(t *testing.T) {
		remote := base
		remote.Properties = map[string]any{"url": "https://example.org"}

		change := Compare(base, remote)
		assert.Equal(t, models.ChangeModified, change.Kind)
		assert.Contains(t, change.Previous, models.AttrProperties)
		assert.Len(t, change.Previous, 1)
	})

	t.Run("NumericPropertiesCompareByValue", func(t *testing.T) {
		local := base
		local.Properties = map[string]any{"year": 1999, "tags": []any{"a", "b"}}
		remote := base
		remote.Properties = map[string]any{"year": float64(1999), "tags": []any{"a", "b"}}

		assert.Equal(t, models.ChangeIdentical, Compare(local, remote).Kind)
	})

	t.Run("EmptyAndNilProperties", func(t *testing.T) {
		local := base
		local.Properties = nil
		remote := base
		remote.Properties = map[string]any{}

		assert.Equal(t, models.ChangeIdentical, Compare(local, remote).Kind)
	})

	t.Run("CreatedAtIsIgnored", func(t *testing.T) {
		remote := base
		remote.FileCreatedAt = modified.Add(-48 * time.Hour)
		assert.Equal(t, models.ChangeIdentical, Compare(base, remote).Kind)
	})
}
