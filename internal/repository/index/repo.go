// Package index persists one flat vector index plus its chunk texts per
// document. Two artifacts live side by side under the index directory:
//
//	<docID>.vec        serialized flat inner-product index
//	<docID>.meta.json  {"chunks": [...]} with one entry per vector
//
// The pair is replaced wholesale on every save. A per-document RW lock plus
// temp-file-and-rename writes guarantee a reader never observes a
// half-written pair.
//
// Lock entries live for the process lifetime, one per distinct document id
// ever touched. Releasing an entry on delete would let a concurrent writer
// mint a fresh lock for the same id while the old one is still held, losing
// mutual exclusion, so the map is left to grow with the id space instead.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/domain"
	"github.com/docsense/docsense/internal/domain/vector"
)

// meta is the on-disk shape of the chunk metadata artifact.
type meta struct {
	Chunks []string `json:"chunks"`
}

// Repository is the file-backed document index store.
type Repository struct {
	dir    string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New creates a repository rooted at dir, creating it if needed.
func New(dir string, logger *zap.Logger) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir %s: %w", dir, err)
	}
	return &Repository{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.RWMutex),
	}, nil
}

// Dir returns the index directory.
func (r *Repository) Dir() string { return r.dir }

// lockFor returns the per-document lock, creating it on first use.
// Documents are independent units of concurrency; no cross-document locking.
func (r *Repository) lockFor(docID string) *sync.RWMutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[docID]
	if !ok {
		l = &sync.RWMutex{}
		r.locks[docID] = l
	}
	return l
}

// Save atomically replaces the index pair for docID. Both artifacts are
// staged as temp files and renamed into place under the document's write
// lock, so concurrent readers see either the old pair or the new pair.
func (r *Repository) Save(ctx context.Context, docID string, idx *vector.Flat, chunks []string) error {
	if err := validateDocID(docID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save index %s: %w", docID, err)
	}
	if idx.Len() != len(chunks) {
		return fmt.Errorf("save index %s: %d vectors vs %d chunks: %w",
			docID, idx.Len(), len(chunks), domain.ErrCorruptIndex)
	}

	vecTmp, err := r.stageVectors(docID, idx)
	if err != nil {
		return err
	}
	metaTmp, err := r.stageMeta(docID, chunks)
	if err != nil {
		_ = os.Remove(vecTmp)
		return err
	}

	lock := r.lockFor(docID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Rename(vecTmp, r.vecPath(docID)); err != nil {
		_ = os.Remove(vecTmp)
		_ = os.Remove(metaTmp)
		return fmt.Errorf("swap vector artifact for %s: %w", docID, err)
	}
	if err := os.Rename(metaTmp, r.metaPath(docID)); err != nil {
		_ = os.Remove(metaTmp)
		return fmt.Errorf("swap meta artifact for %s: %w", docID, err)
	}
	return nil
}

// Load returns the index pair for docID. Missing artifacts yield
// domain.ErrIndexNotFound; a vector/chunk count mismatch yields
// domain.ErrCorruptIndex (which unwraps to ErrIndexNotFound) with a
// diagnostic log, never a crash.
func (r *Repository) Load(ctx context.Context, docID string) (*vector.Flat, []string, error) {
	if err := validateDocID(docID); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("load index %s: %w", docID, err)
	}

	lock := r.lockFor(docID)
	lock.RLock()
	defer lock.RUnlock()

	vecFile, err := os.Open(r.vecPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, domain.ErrIndexNotFound
		}
		return nil, nil, fmt.Errorf("open vector artifact for %s: %w", docID, err)
	}
	defer vecFile.Close()

	metaData, err := os.ReadFile(r.metaPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, domain.ErrIndexNotFound
		}
		return nil, nil, fmt.Errorf("read meta artifact for %s: %w", docID, err)
	}

	idx, err := vector.Decode(vecFile)
	if err != nil {
		r.logger.Warn("Unreadable vector artifact, treating index as absent",
			zap.String("document_id", docID), zap.Error(err))
		return nil, nil, fmt.Errorf("decode vector artifact for %s: %w", docID, domain.ErrCorruptIndex)
	}

	var m meta
	if err := json.Unmarshal(metaData, &m); err != nil {
		r.logger.Warn("Unreadable meta artifact, treating index as absent",
			zap.String("document_id", docID), zap.Error(err))
		return nil, nil, fmt.Errorf("decode meta artifact for %s: %w", docID, domain.ErrCorruptIndex)
	}

	if idx.Len() != len(m.Chunks) {
		r.logger.Warn("Vector/chunk count mismatch, treating index as absent",
			zap.String("document_id", docID),
			zap.Int("vectors", idx.Len()),
			zap.Int("chunks", len(m.Chunks)))
		return nil, nil, fmt.Errorf("index %s: %d vectors vs %d chunks: %w",
			docID, idx.Len(), len(m.Chunks), domain.ErrCorruptIndex)
	}

	return idx, m.Chunks, nil
}

// Delete removes both artifacts for docID. Idempotent: absent artifacts are
// not an error.
func (r *Repository) Delete(ctx context.Context, docID string) error {
	if err := validateDocID(docID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete index %s: %w", docID, err)
	}

	lock := r.lockFor(docID)
	lock.Lock()
	defer lock.Unlock()

	for _, path := range []string{r.vecPath(docID), r.metaPath(docID)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// HealthCheck verifies the index directory is present and writable by
// staging and removing a probe file.
func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(r.dir, ".healthcheck-*")
	if err != nil {
		return fmt.Errorf("index dir not writable: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("index dir probe: %w", err)
	}
	return os.Remove(name)
}

// Exists reports whether a complete index pair is present for docID.
func (r *Repository) Exists(ctx context.Context, docID string) (bool, error) {
	if err := validateDocID(docID); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("stat index %s: %w", docID, err)
	}

	lock := r.lockFor(docID)
	lock.RLock()
	defer lock.RUnlock()

	for _, path := range []string{r.vecPath(docID), r.metaPath(docID)} {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return true, nil
}

func (r *Repository) stageVectors(docID string, idx *vector.Flat) (string, error) {
	f, err := os.CreateTemp(r.dir, docID+".vec.tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage vector artifact for %s: %w", docID, err)
	}
	if err := idx.Encode(f); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write vector artifact for %s: %w", docID, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close vector artifact for %s: %w", docID, err)
	}
	return f.Name(), nil
}

func (r *Repository) stageMeta(docID string, chunks []string) (string, error) {
	data, err := json.Marshal(meta{Chunks: chunks})
	if err != nil {
		return "", fmt.Errorf("marshal meta for %s: %w", docID, err)
	}
	f, err := os.CreateTemp(r.dir, docID+".meta.tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage meta artifact for %s: %w", docID, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write meta artifact for %s: %w", docID, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close meta artifact for %s: %w", docID, err)
	}
	return f.Name(), nil
}

func (r *Repository) vecPath(docID string) string {
	return filepath.Join(r.dir, docID+".vec")
}

func (r *Repository) metaPath(docID string) string {
	return filepath.Join(r.dir, docID+".meta.json")
}

// validateDocID rejects ids that would escape the index directory.
func validateDocID(docID string) error {
	if docID == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidDocumentID)
	}
	if strings.ContainsAny(docID, "/\\") || docID == "." || docID == ".." {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDocumentID, docID)
	}
	return nil
}
