package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/RostislavDaniliv/eddy-school/internal/core/docsource"
	"github.com/RostislavDaniliv/eddy-school/internal/core/vector"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

const (
	defaultChunkSize    = 1024
	defaultChunkOverlap = 20
)

// Store is the slice of the vector service the index layer needs. Satisfied
// by *vector.Service.
type Store interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	DeleteCollection(ctx context.Context, name string) error
	CreateCollection(ctx context.Context, name string) error
	AddDocuments(ctx context.Context, collection string, documents []vector.Document) error
}

// Manager decides when a namespace's vector collection must be rebuilt and
// serializes concurrent rebuilds of the same namespace. Collection name ==
// namespace key, so tenants can never search each other's chunks.
type Manager struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	testUsers repositories.TestUserRepo
}

func NewManager(testUsers repositories.TestUserRepo) *Manager {
	return &Manager{
		locks:     make(map[string]*sync.Mutex),
		testUsers: testUsers,
	}
}

func (m *Manager) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

// Ensure makes the namespace collection queryable: the load callback syncs
// the document cache and returns its text plus whether anything changed;
// reuse when nothing changed and the collection exists, otherwise rebuild.
// load runs under the namespace lock, so the cache rewrite, the freshness
// check and the rebuild form one critical section — two requests for the
// same namespace can never interleave a cache wipe with a cache read.
func (m *Manager) Ensure(ctx context.Context, store Store, ns docsource.Namespace, load func() (text string, changed bool, err error), chunkSize, chunkOverlap int) error {
	lock := m.lockFor(ns.Key())
	lock.Lock()
	defer lock.Unlock()

	text, changed, err := load()
	if err != nil {
		return err
	}

	exists, err := store.CollectionExists(ctx, ns.Key())
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !changed && exists {
		return nil
	}

	return m.rebuild(ctx, store, ns, text, exists, chunkSize, chunkOverlap)
}

// EnsureTrial is Ensure for ad hoc landing-page documents: load returns the
// cached text and its content hash, and staleness is detected by comparing
// that hash against the one stored for the trial contact.
func (m *Manager) EnsureTrial(ctx context.Context, store Store, ns docsource.Namespace, load func() (text, contentHash string, err error), contactID string, chunkSize, chunkOverlap int) error {
	lock := m.lockFor(ns.Key())
	lock.Lock()
	defer lock.Unlock()

	text, contentHash, err := load()
	if err != nil {
		return err
	}

	tu, err := m.testUsers.GetOrCreate(contactID)
	if err != nil {
		return fmt.Errorf("failed to load trial user: %w", err)
	}

	exists, err := store.CollectionExists(ctx, ns.Key())
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists && tu.FileHashSum == contentHash {
		return nil
	}

	if err := m.rebuild(ctx, store, ns, text, exists, chunkSize, chunkOverlap); err != nil {
		return err
	}

	tu.FileHashSum = contentHash
	tu.FileSize = float64(len(text))
	if err := m.testUsers.Save(tu); err != nil {
		return fmt.Errorf("failed to persist trial hash: %w", err)
	}
	return nil
}

func (m *Manager) rebuild(ctx context.Context, store Store, ns docsource.Namespace, text string, exists bool, chunkSize, chunkOverlap int) error {
	if exists {
		if err := store.DeleteCollection(ctx, ns.Key()); err != nil {
			return fmt.Errorf("failed to drop stale collection: %w", err)
		}
	}
	if err := store.CreateCollection(ctx, ns.Key()); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = defaultChunkOverlap
	}

	docs := vector.ChunkDocuments(vector.Document{
		Text:     text,
		Metadata: map[string]interface{}{"namespace": ns.Key()},
	}, chunkSize, chunkOverlap)
	if len(docs) == 0 {
		return nil
	}

	if err := store.AddDocuments(ctx, ns.Key(), docs); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	utils.LogInfo("vector index rebuilt", map[string]interface{}{
		"namespace": ns.Key(),
		"chunks":    len(docs),
	})
	return nil
}
