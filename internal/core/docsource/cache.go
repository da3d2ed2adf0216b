package docsource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

// Namespace scopes the on-disk document cache and the vector collection to
// one tenant (or one trial contact). All paths and collection names derive
// from the key, so tenants can never read each other's material.
type Namespace struct {
	root string
	key  string
}

func ForBusinessUnit(root, apikey string) Namespace {
	return Namespace{root: root, key: apikey}
}

func ForTrial(root, contactID string) Namespace {
	return Namespace{root: root, key: "trial-" + contactID}
}

func (n Namespace) Key() string { return n.key }

func (n Namespace) DocumentsDir() string {
	return filepath.Join(n.root, "documents-"+n.key)
}

func (n Namespace) IndexDir() string {
	return filepath.Join(n.root, "saved_index-"+n.key)
}

// Cache keeps flattened document text on disk and decides when it is stale.
type Cache struct {
	source GoogleFetcher
	buRepo repositories.BusinessUnitRepo
}

func NewCache(source GoogleFetcher, buRepo repositories.BusinessUnitRepo) *Cache {
	return &Cache{source: source, buRepo: buRepo}
}

// Sync brings the namespace's document cache up to date for a tenant.
// The cache is stale when the directory is missing, a Google document was
// modified after the stored timestamp, or the document set itself changed
// (fingerprint mismatch). Returns true when the cache was rewritten, which
// tells the index layer to rebuild.
func (c *Cache) Sync(ctx context.Context, ns Namespace, bu *models.BusinessUnit, googleIDs []string, uploadedFiles []string) (bool, error) {
	googleDocs := make([]*GoogleDoc, 0, len(googleIDs))
	var latest time.Time
	for _, id := range googleIDs {
		doc, err := c.source.Fetch(ctx, id)
		if err != nil {
			return false, err
		}
		googleDocs = append(googleDocs, doc)
		if doc.Modified.After(latest) {
			latest = doc.Modified
		}
	}

	fingerprint := documentSetFingerprint(googleIDs, uploadedFiles)

	stale := false
	if _, err := os.Stat(ns.DocumentsDir()); os.IsNotExist(err) {
		stale = true
	}
	if bu.LastUpdateDocument == nil {
		stale = true
	} else if !latest.IsZero() && latest.After(*bu.LastUpdateDocument) {
		stale = true
	}
	if bu.LastUsedDocuments != fingerprint {
		stale = true
	}

	if !stale {
		return false, nil
	}

	if err := c.rewrite(ns, googleDocs, uploadedFiles); err != nil {
		return false, err
	}

	stamp := latest
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	bu.LastUpdateDocument = &stamp
	bu.LastUsedDocuments = fingerprint
	if err := c.buRepo.Save(bu); err != nil {
		return false, fmt.Errorf("failed to persist document state: %w", err)
	}

	utils.LogInfo("document cache rebuilt", map[string]interface{}{
		"namespace":   ns.Key(),
		"google_docs": len(googleDocs),
		"files":       len(uploadedFiles),
	})
	return true, nil
}

// SyncTrial writes ad hoc documents for a trial contact and returns the
// content hash the index layer compares against the stored one.
func (c *Cache) SyncTrial(ctx context.Context, ns Namespace, googleIDs []string) (string, error) {
	googleDocs := make([]*GoogleDoc, 0, len(googleIDs))
	for _, id := range googleIDs {
		doc, err := c.source.Fetch(ctx, id)
		if err != nil {
			return "", err
		}
		googleDocs = append(googleDocs, doc)
	}

	if err := c.rewrite(ns, googleDocs, nil); err != nil {
		return "", err
	}

	h := sha256.New()
	for _, doc := range googleDocs {
		h.Write([]byte(doc.Text))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CachedText returns the concatenated cached text, files in name order so
// the result is deterministic.
func (c *Cache) CachedText(ns Namespace) (string, error) {
	entries, err := os.ReadDir(ns.DocumentsDir())
	if err != nil {
		return "", fmt.Errorf("failed to read document cache: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(ns.DocumentsDir(), name))
		if err != nil {
			return "", fmt.Errorf("failed to read cached document %s: %w", name, err)
		}
		sb.Write(data)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Clear removes both the document cache and the index directory.
func (c *Cache) Clear(ns Namespace) error {
	if err := os.RemoveAll(ns.DocumentsDir()); err != nil {
		return err
	}
	return os.RemoveAll(ns.IndexDir())
}

// rewrite wipes the namespace and writes the flattened text of every source.
// Extraction failures of individual uploaded files are logged and skipped so
// one broken upload doesn't take the whole corpus down.
func (c *Cache) rewrite(ns Namespace, googleDocs []*GoogleDoc, uploadedFiles []string) error {
	if err := c.Clear(ns); err != nil {
		return fmt.Errorf("failed to clear namespace %s: %w", ns.Key(), err)
	}
	if err := os.MkdirAll(ns.DocumentsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create document cache: %w", err)
	}

	for _, doc := range googleDocs {
		name := sanitizeFilename(doc.Title)
		if name == "" {
			name = doc.ID
		}
		path := filepath.Join(ns.DocumentsDir(), name+".txt")
		if err := os.WriteFile(path, []byte(doc.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write cached document: %w", err)
		}
	}

	for _, file := range uploadedFiles {
		text, err := ExtractText(file)
		if err != nil {
			utils.LogWarn("skipping uploaded file", map[string]interface{}{
				"namespace": ns.Key(),
				"file":      file,
				"reason":    err.Error(),
			})
			continue
		}
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		path := filepath.Join(ns.DocumentsDir(), sanitizeFilename(base)+".txt")
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write extracted file: %w", err)
		}
	}

	return nil
}

// documentSetFingerprint hashes the sorted identity of the document set so
// adding or removing a source invalidates the cache even when timestamps
// don't move.
func documentSetFingerprint(googleIDs, uploadedFiles []string) string {
	ids := make([]string, 0, len(googleIDs)+len(uploadedFiles))
	ids = append(ids, googleIDs...)
	ids = append(ids, uploadedFiles...)
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return replacer.Replace(name)
}
