package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonweb/mediakit/internal/cache"
	"github.com/halcyonweb/mediakit/pkg/types"
)

func writeGalleryFiles(t *testing.T, base, projectID string, names ...string) {
	t.Helper()
	dir := filepath.Join(base, projectID)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0644))
	}
}

func TestGallery_ListsAndFilters(t *testing.T) {
	base := t.TempDir()
	writeGalleryFiles(t, base, "42",
		"image_1.webp",
		"project_image_2.webp",
		"notes.txt",
		"thumb.png",
	)

	g := NewGallery(base, "/images/Projects/", time.Minute)
	gallery := g.ProjectImages("42")

	assert.Equal(t, []string{
		"/images/Projects/42/image_1.webp",
		"/images/Projects/42/project_image_2.webp",
	}, gallery.Images)
	assert.Equal(t, "/images/Projects/42/image_1.webp", gallery.Thumbnail)
}

func TestGallery_MissingDirectoryIsEmpty(t *testing.T) {
	g := NewGallery(t.TempDir(), "/images/Projects/", time.Minute)

	gallery := g.ProjectImages("999")
	assert.Empty(t, gallery.Images)
	assert.Empty(t, gallery.Thumbnail)
}

func TestGallery_ServesStaleUntilTTL(t *testing.T) {
	base := t.TempDir()
	writeGalleryFiles(t, base, "7", "image_a.webp")

	now := time.Unix(9000, 0)
	g := NewGallery(base, "/images/Projects/", time.Minute,
		cache.WithClock[string, types.ProjectGallery](func() time.Time { return now }))

	first := g.ProjectImages("7")
	require.Len(t, first.Images, 1)

	// a new upload is invisible until the entry expires
	writeGalleryFiles(t, base, "7", "image_b.webp")
	assert.Len(t, g.ProjectImages("7").Images, 1)

	now = now.Add(time.Minute)
	assert.Len(t, g.ProjectImages("7").Images, 2)
}
