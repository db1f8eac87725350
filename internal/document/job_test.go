package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeFileName(t *testing.T) {
	require.Equal(t, "CD-0005A-1403.pdf", safeFileName("CD-0005A/1403.pdf"))
	require.Equal(t, "MO-0012.pdf", safeFileName("MO-0012.pdf"))
}

func TestRenderJobSaveFlattensInvoiceNumbers(t *testing.T) {
	dir := t.TempDir()
	j := NewRenderJob(RenderJobConfig{StorageDir: dir})

	path, attachName, err := j.save("CD-0001A/1403.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, "CD-0001A-1403.pdf", attachName)

	base := filepath.Base(path)
	require.NotContains(t, base, "/")
	require.True(t, strings.HasSuffix(base, "-CD-0001A-1403.pdf"))
	require.Greater(t, len(base), len("-CD-0001A-1403.pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(data))
}
