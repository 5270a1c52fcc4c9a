package file

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageKeyFormat(t *testing.T) {
	key := storageKey("report.pdf")

	prefix, name, ok := strings.Cut(key, "-")
	require.True(t, ok, "key %q should contain a delimiter", key)
	assert.Equal(t, "report.pdf", name)

	_, err := strconv.ParseInt(prefix, 10, 64)
	assert.NoError(t, err, "prefix %q should be a timestamp", prefix)
}

func TestStorageKeyPassesFilenameThrough(t *testing.T) {
	// Filenames are not sanitized; whatever the client sent ends up in the key.
	assert.True(t, strings.HasSuffix(storageKey("../weird name.txt"), "-../weird name.txt"))
	assert.True(t, strings.HasSuffix(storageKey(""), "-"))
}
