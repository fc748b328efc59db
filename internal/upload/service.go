package upload

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/halcyonweb/mediakit/internal/cache"
	"github.com/halcyonweb/mediakit/internal/imaging"
	"github.com/halcyonweb/mediakit/pkg/config"
	"github.com/halcyonweb/mediakit/pkg/utils"
)

// allowedImageExts is the extension allow-list for completed uploads
var allowedImageExts = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Result is the stored outcome of a completed upload. Retried completion
// calls for the same upload id receive the identical Result.
type Result struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Service composes chunk intake, reassembly, and WebP transcoding into the
// upload operations the routes call. Completion is idempotent for a short
// window so network-retried calls are safe and cheap.
type Service struct {
	store     *Store
	completed *cache.Cache[string, *Result]
	locks     *keyedMutex
	tempDir   string
	mediaRoot string
	now       func() time.Time
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithServiceClock overrides the Service's time source: generated filenames,
// the completion cache's expiry, and the Store's session expiry all follow it
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the upload pipeline from its configuration. The returned
// Service owns the Store's lifecycle; call Stop on shutdown. The Store's
// sweep pass also prunes expired completion records, so records for uploads
// that are never retried do not accumulate.
func NewService(cfg *config.UploadConfig, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		locks:     newKeyedMutex(),
		tempDir:   cfg.TempDir,
		mediaRoot: cfg.MediaRoot,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.completed = cache.New[string, *Result](cfg.CompletionTTL, cache.WithClock[string, *Result](s.now))

	store, err := NewStore(cfg.TempDir, cfg.SessionTimeout, cfg.SweepInterval,
		WithClock(s.now), WithSweepHook(s.completed.DeleteExpired))
	if err != nil {
		return nil, err
	}
	s.store = store

	return s, nil
}

// Stop shuts down the background sweeper
func (s *Service) Stop() {
	s.store.Stop()
}

// Store exposes the session registry for callers that only save chunks
func (s *Service) Store() *Store {
	return s.store
}

// SaveChunk persists one chunk of an in-flight upload
func (s *Service) SaveChunk(uploadID string, chunkIndex, totalChunks int, data []byte) (Progress, error) {
	return s.store.SaveChunk(uploadID, chunkIndex, totalChunks, data)
}

// Cleanup discards an upload's session and fragments
func (s *Service) Cleanup(uploadID string) {
	s.store.Cleanup(uploadID)
}

// Complete finalizes an upload: validates the declared filename against the
// image allow-list, reassembles the chunks, transcodes the result to WebP
// under the use case's profile, and records the outcome for idempotent
// retries. The whole sequence holds a per-upload lock so concurrent calls for
// one upload id never reassemble twice.
func (s *Service) Complete(uploadID, fileName, useCase string) (*Result, error) {
	s.locks.lock(uploadID)
	defer s.locks.unlock(uploadID)

	if result, ok := s.completed.Get(uploadID); ok {
		log.Debug().Str("upload_id", uploadID).Msg("returning cached completion result")
		return result, nil
	}

	profile, err := ProfileFor(useCase)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if !allowedImageExts[ext] {
		s.store.Cleanup(uploadID)
		return nil, &InvalidFileTypeError{Ext: ext}
	}

	tempFile := filepath.Join(s.tempDir, uploadID+"_complete")
	if err := s.store.Reassemble(uploadID, tempFile); err != nil {
		return nil, err
	}
	// the transcoder deletes tempFile on success; this covers the failure path
	defer os.Remove(tempFile)

	filename := profile.FilenamePrefix + strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + utils.RandomSuffix(6) + ".webp"
	outputPath := filepath.Join(s.mediaRoot, profile.Dir, filename)

	if err := imaging.ConvertToWebP(tempFile, outputPath, profile.TranscodeOptions()); err != nil {
		return nil, err
	}

	result := &Result{
		Success:  true,
		URL:      profile.URLPrefix + filename,
		Filename: filename,
	}
	s.completed.Set(uploadID, result)

	log.Info().
		Str("upload_id", uploadID).
		Str("use_case", useCase).
		Str("url", result.URL).
		Msg("upload completed")

	return result, nil
}
