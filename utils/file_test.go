package utils

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFilename(t *testing.T) {
	before := time.Now().UnixMilli()
	name := UploadFilename("team roster\tfinal.png")
	after := time.Now().UnixMilli()

	parts := strings.SplitN(name, "_", 2)
	require.Len(t, parts, 2)

	ts, err := strconv.ParseInt(parts[0], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, before)
	assert.LessOrEqual(t, ts, after)

	assert.Equal(t, "team_roster_final.png", parts[1])
}

func TestUploadFilenameStripsDirectories(t *testing.T) {
	name := UploadFilename("../../etc/passwd")
	assert.True(t, strings.HasSuffix(name, "_passwd"), "got %q", name)
	assert.NotContains(t, name, "/")
}

func TestGetUploadPath(t *testing.T) {
	original := UploadDir
	UploadDir = filepath.Join("var", "uploads")
	t.Cleanup(func() { UploadDir = original })

	assert.Equal(t, filepath.Join("var", "uploads", "123_a.png"), GetUploadPath("123_a.png"))
}
