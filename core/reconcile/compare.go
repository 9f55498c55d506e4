package reconcile

import (
	"encoding/json"

	"lair-scanner/core/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Compare classifies a local file against its remote counterpart.
// For modified files, Previous maps each differing attribute to the remote value.
func Compare(local, remote models.File) models.Change {
	previous := make(map[string]any)

	if local.Size != remote.Size {
		previous[models.AttrSize] = remote.Size
	}
	if !models.TruncateTime(local.FileModifiedAt).Equal(models.TruncateTime(remote.FileModifiedAt)) {
		previous[models.AttrModifiedAt] = remote.FileModifiedAt
	}
	if !equalProperties(local.Properties, remote.Properties) {
		previous[models.AttrProperties] = remote.Properties
	}

	change := models.Change{Path: local.Path, File: &local}
	if len(previous) == 0 {
		change.Kind = models.ChangeIdentical
		return change
	}

	change.Kind = models.ChangeModified
	change.Previous = previous
	return change
}

// equalProperties compares property maps structurally after a JSON round trip,
// so that numbers decoded from YAML and from JSON compare equal.
func equalProperties(a, b map[string]any) bool {
	return cmp.Equal(canonical(a), canonical(b), cmpopts.EquateEmpty())
}

func canonical(m map[string]any) any {
	if len(m) == 0 {
		return map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return m
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return m
	}
	return out
}
