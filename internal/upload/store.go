// Package upload implements the chunked image upload pipeline: chunk intake
// and reassembly, idempotent completion with WebP transcoding, and sweeping
// of abandoned uploads.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// session tracks one in-flight chunked upload
type session struct {
	id          string
	totalChunks int
	received    map[int]struct{}
	createdAt   time.Time
}

func (s *session) complete() bool {
	return len(s.received) == s.totalChunks
}

// Progress reports the state of an upload after a chunk write
type Progress struct {
	UploadID    string `json:"uploadId"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
	Received    int    `json:"received"`
	Complete    bool   `json:"isComplete"`
}

// Store is the in-memory registry of upload sessions plus their on-disk chunk
// fragments. It owns a background sweeper that removes uploads abandoned for
// longer than the configured timeout.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session

	tempDir       string
	timeout       time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	sweepHook func()

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock overrides the time source, used by tests to control expiry
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithSweepHook registers fn to run on every sweep pass, after expired
// sessions are removed. The Service uses it to prune expired completion
// records on the same cadence.
func WithSweepHook(fn func()) StoreOption {
	return func(s *Store) {
		s.sweepHook = fn
	}
}

// NewStore creates the session registry and starts its sweeper. Call Stop to
// shut the sweeper down.
func NewStore(tempDir string, timeout, sweepInterval time.Duration, opts ...StoreOption) (*Store, error) {
	s := &Store{
		sessions:      make(map[string]*session),
		tempDir:       tempDir,
		timeout:       timeout,
		sweepInterval: sweepInterval,
		now:           time.Now,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	s.wg.Add(1)
	go s.sweepRoutine()

	return s, nil
}

// Stop shuts down the background sweeper
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// chunkPath is deterministic so retried submissions of the same index
// overwrite cleanly
func (s *Store) chunkPath(uploadID string, index int) string {
	return filepath.Join(s.tempDir, fmt.Sprintf("%s_chunk_%d", uploadID, index))
}

// SaveChunk persists one chunk and records it against the upload's session.
// The first chunk for an unseen upload id creates the session and fixes the
// declared total. Chunks may arrive out of order and indices may be retried.
func (s *Store) SaveChunk(uploadID string, chunkIndex, totalChunks int, data []byte) (Progress, error) {
	if totalChunks <= 0 {
		return Progress{}, fmt.Errorf("total chunks must be positive, got %d", totalChunks)
	}
	if chunkIndex < 0 || chunkIndex >= totalChunks {
		return Progress{}, fmt.Errorf("chunk index %d out of range [0,%d)", chunkIndex, totalChunks)
	}

	s.mu.Lock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		sess = &session{
			id:          uploadID,
			totalChunks: totalChunks,
			received:    make(map[int]struct{}),
			createdAt:   s.now(),
		}
		s.sessions[uploadID] = sess
	}
	if totalChunks != sess.totalChunks {
		s.mu.Unlock()
		return Progress{}, fmt.Errorf("declared total %d differs from session total %d", totalChunks, sess.totalChunks)
	}
	s.mu.Unlock()

	if err := os.WriteFile(s.chunkPath(uploadID, chunkIndex), data, 0644); err != nil {
		return Progress{}, fmt.Errorf("failed to write chunk %d: %w", chunkIndex, err)
	}

	s.mu.Lock()
	// the sweeper may have claimed the session while the chunk was on its
	// way to disk; recreate it so the received set stays monotonic
	sess, ok = s.sessions[uploadID]
	if !ok {
		sess = &session{
			id:          uploadID,
			totalChunks: totalChunks,
			received:    make(map[int]struct{}),
			createdAt:   s.now(),
		}
		s.sessions[uploadID] = sess
	}
	sess.received[chunkIndex] = struct{}{}
	progress := Progress{
		UploadID:    uploadID,
		ChunkIndex:  chunkIndex,
		TotalChunks: sess.totalChunks,
		Received:    len(sess.received),
		Complete:    sess.complete(),
	}
	s.mu.Unlock()

	log.Debug().
		Str("upload_id", uploadID).
		Int("chunk_index", chunkIndex).
		Int("received", progress.Received).
		Int("total", progress.TotalChunks).
		Msg("chunk saved")

	return progress, nil
}

// Reassemble concatenates the upload's chunks in index order into outputPath,
// then deletes the fragments and drops the session. On any failure the
// fragments and session are removed as well, so a failed attempt never leaves
// a partially-live upload behind.
func (s *Store) Reassemble(uploadID, outputPath string) error {
	s.mu.Lock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if !sess.complete() {
		received, expected := len(sess.received), sess.totalChunks
		s.mu.Unlock()
		return &MissingChunksError{Received: received, Expected: expected}
	}
	// claim the session so neither the sweeper nor a concurrent cleanup can
	// touch its fragments mid-reassembly
	delete(s.sessions, uploadID)
	totalChunks := sess.totalChunks
	s.mu.Unlock()

	if err := s.concatChunks(uploadID, totalChunks, outputPath); err != nil {
		s.removeFragments(uploadID, totalChunks)
		os.Remove(outputPath)
		return err
	}

	s.removeFragments(uploadID, totalChunks)

	log.Info().
		Str("upload_id", uploadID).
		Int("chunks", totalChunks).
		Str("output", outputPath).
		Msg("upload reassembled")

	return nil
}

func (s *Store) concatChunks(uploadID string, totalChunks int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	for i := 0; i < totalChunks; i++ {
		chunk, err := os.Open(s.chunkPath(uploadID, i))
		if err != nil {
			if os.IsNotExist(err) {
				return &MissingChunkFileError{Index: i}
			}
			return fmt.Errorf("failed to open chunk %d: %w", i, err)
		}
		_, err = io.Copy(out, chunk)
		chunk.Close()
		if err != nil {
			return fmt.Errorf("failed to append chunk %d: %w", i, err)
		}
	}

	return out.Sync()
}

// removeFragments best-effort deletes every possible chunk file for an upload
func (s *Store) removeFragments(uploadID string, totalChunks int) {
	for i := 0; i < totalChunks; i++ {
		if err := os.Remove(s.chunkPath(uploadID, i)); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("upload_id", uploadID).Int("chunk_index", i).Msg("failed to delete chunk fragment")
		}
	}
}

// Cleanup removes an upload's session and any chunk fragments it wrote.
// Unknown ids are a no-op.
func (s *Store) Cleanup(uploadID string) {
	s.mu.Lock()
	sess, ok := s.sessions[uploadID]
	if ok {
		delete(s.sessions, uploadID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	s.removeFragments(uploadID, sess.totalChunks)

	log.Debug().Str("upload_id", uploadID).Msg("upload cleaned up")
}

// SessionCount reports how many uploads are currently in flight
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweepRoutine periodically removes abandoned uploads
func (s *Store) sweepRoutine() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-s.done:
			return
		}
	}
}

// sweepExpired removes every session older than the abandonment timeout,
// along with its fragments
func (s *Store) sweepExpired() {
	cutoff := s.now().Add(-s.timeout)

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.createdAt.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.removeFragments(sess.id, sess.totalChunks)
		log.Info().
			Str("upload_id", sess.id).
			Time("created_at", sess.createdAt).
			Msg("swept abandoned upload")
	}

	if s.sweepHook != nil {
		s.sweepHook()
	}
}
