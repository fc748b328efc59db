package catalog

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcyonweb/mediakit/internal/cache"
	"github.com/halcyonweb/mediakit/pkg/types"
)

// Gallery caches per-project image listings computed from the project's
// directory under the media root. There is no invalidation path: callers
// accept up to one TTL window of staleness after an image upload or delete.
type Gallery struct {
	basePath  string
	urlPrefix string
	cache     *cache.Cache[string, types.ProjectGallery]
}

// NewGallery creates the gallery cache. basePath is the directory holding one
// subdirectory per project id; urlPrefix maps it to its public URL.
func NewGallery(basePath, urlPrefix string, ttl time.Duration, opts ...cache.Option[string, types.ProjectGallery]) *Gallery {
	return &Gallery{
		basePath:  basePath,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		cache:     cache.New(ttl, opts...),
	}
}

// ProjectImages lists a project's gallery. A missing or unreadable directory
// yields an empty gallery, not an error.
func (g *Gallery) ProjectImages(projectID string) types.ProjectGallery {
	if gallery, ok := g.cache.Get(projectID); ok {
		return gallery
	}

	gallery := types.ProjectGallery{Images: []string{}}

	entries, err := os.ReadDir(filepath.Join(g.basePath, projectID))
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !strings.HasPrefix(name, "image_") && !strings.HasPrefix(name, "project_image_") {
				continue
			}
			gallery.Images = append(gallery.Images, path.Join(g.urlPrefix, projectID, name))
		}
		if len(gallery.Images) > 0 {
			gallery.Thumbnail = gallery.Images[0]
		}
	}

	g.cache.Set(projectID, gallery)
	return gallery
}
