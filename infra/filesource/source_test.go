package filesource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/docksched/core/source"
)

func TestDecodeShapes(t *testing.T) {
	for name, body := range map[string]string{
		"array":   `[{"Id":1},{"Id":2}]`,
		"verbose": `{"d":{"results":[{"Id":1},{"Id":2}]}}`,
		"value":   `{"value":[{"Id":1},{"Id":2}]}`,
	} {
		items, err := Decode([]byte(body))
		require.NoError(t, err, name)
		assert.Len(t, items, 2, name)
	}
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Id":"7","Awizacja":"20/11/2025 08:00"}]`), 0o644))
	items, err := New(path).Fetch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0]["Id"])

	_, err = New(path+".missing").Fetch(context.Background(), time.Now())
	var fe *source.FetchError
	assert.True(t, errors.As(err, &fe))
	assert.False(t, errors.Is(err, source.ErrTransient))
}
