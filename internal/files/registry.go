// Package files keeps the metadata of uploaded files and mirrors it to the
// app_stored_files blob after every change.
package files

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/siteledger/internal/kv"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
)

// Registry is the set of stored-file records. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	files []model.StoredFile
	kv    kv.Store
	log   *logger.Logger
	now   func() time.Time
}

// New restores the registry from store. A nil store keeps the registry in
// memory only.
func New(ctx context.Context, store kv.Store, log *logger.Logger) (*Registry, error) {
	r := &Registry{kv: store, log: logger.OrNop(log), now: func() time.Time { return time.Now().UTC() }}
	if store == nil {
		return r, nil
	}
	if _, err := kv.GetJSON(ctx, store, kv.KeyStoredFiles, &r.files); err != nil {
		return nil, fmt.Errorf("loading stored files: %w", err)
	}
	r.log.Debug("file registry loaded", "files", len(r.files))
	return r, nil
}

// AddFile stores meta under a fresh id and upload time. It does not check
// the storage quota; callers do that first.
func (r *Registry) AddFile(ctx context.Context, meta model.StoredFile) (model.StoredFile, error) {
	if meta.Size < 0 {
		return model.StoredFile{}, fmt.Errorf("adding file %s: size %d: %w", meta.Name, meta.Size, model.ErrValidation)
	}
	meta.ID = uuid.New().String()
	meta.UploadedAt = r.now()
	if meta.LinkedTo != nil {
		link := *meta.LinkedTo
		meta.LinkedTo = &link
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(r.cloneLocked(), meta)
	if err := r.persist(ctx, next); err != nil {
		return model.StoredFile{}, err
	}
	r.files = next
	r.log.Info("file added", "id", meta.ID, "name", meta.Name, "size", meta.Size)
	return meta, nil
}

// DeleteFile removes the file with id. An unknown id is ignored.
func (r *Registry) DeleteFile(ctx context.Context, id string) error {
	return r.DeleteFiles(ctx, []string{id})
}

// DeleteFiles removes every file whose id is in ids.
func (r *Registry) DeleteFiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]model.StoredFile, 0, len(r.files))
	for _, f := range r.files {
		if _, ok := drop[f.ID]; !ok {
			next = append(next, f)
		}
	}
	if len(next) == len(r.files) {
		return nil
	}
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.log.Info("files deleted", "count", len(r.files)-len(next))
	r.files = next
	return nil
}

// FilesByLink returns the files linked to the given entity. An empty
// recordID matches files on any record of that entity.
func (r *Registry) FilesByLink(t model.EntityType, id, recordID string) []model.StoredFile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.StoredFile
	for _, f := range r.files {
		if f.LinkedTo == nil || f.LinkedTo.Type != t || f.LinkedTo.ID != id {
			continue
		}
		if recordID != "" && f.LinkedTo.RecordID != recordID {
			continue
		}
		out = append(out, f)
	}
	return out
}

// File returns the file with id.
func (r *Registry) File(id string) (model.StoredFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.files {
		if f.ID == id {
			return f, true
		}
	}
	return model.StoredFile{}, false
}

// Files returns a copy of every record in upload order.
func (r *Registry) Files() []model.StoredFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cloneLocked()
}

func (r *Registry) cloneLocked() []model.StoredFile {
	out := make([]model.StoredFile, len(r.files))
	copy(out, r.files)
	return out
}

func (r *Registry) persist(ctx context.Context, files []model.StoredFile) error {
	if r.kv == nil {
		return nil
	}
	if err := kv.SetJSON(ctx, r.kv, kv.KeyStoredFiles, files); err != nil {
		return fmt.Errorf("saving stored files: %w", err)
	}
	return nil
}
