package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexlsh/internal/db"
	"github.com/kailas-cloud/lexlsh/internal/domain"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo stores fingerprinted documents as hashes covered by one FT index.
type Repo struct {
	store    store
	keys     domain.Keyspace
	encoding lsh.Options
	digest   string
}

// New creates a document repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// WithEncoding stamps written documents with the options digest and makes EnsureIndex
// refuse an index recorded under other options.
func (r *Repo) WithEncoding(opts lsh.Options) *Repo {
	r.encoding = opts
	r.digest = opts.Digest()
	return r
}

// IndexDefinition returns the fingerprint index schema for this backend.
func (r *Repo) IndexDefinition(ctx context.Context) *db.IndexDefinition {
	b := db.NewIndex(r.keys.IndexName()).
		Prefix(r.keys.DocPrefix()).
		NoStopWords().
		TagWithOpts(FieldFingerprint, TagSeparator, true)
	if r.store.SupportsTextSearch(ctx) {
		b = b.TextNoStem(FieldFingerprintText)
	}
	return b.Numeric(FieldDims).MustBuild()
}

// EnsureIndex creates the fingerprint index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.keys.IndexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if !exists {
		if err := r.store.CreateIndex(ctx, r.IndexDefinition(ctx)); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return r.checkEncoding(ctx)
}

// checkEncoding records the encoder digest on first use and compares it afterwards.
func (r *Repo) checkEncoding(ctx context.Context) error {
	if r.digest == "" {
		return nil
	}
	key := r.keys.MetaKey()

	meta, err := r.store.HGetAll(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
	case err != nil:
		return fmt.Errorf("hgetall %s: %w", key, err)
	case meta[FieldEncoding] == r.digest:
		return nil
	case meta[FieldEncoding] != "":
		return fmt.Errorf("%w: index %s built with %q, encoder has %q",
			domain.ErrEncodingMismatch, r.keys.IndexName(), meta[FieldOptions], r.encoding.String())
	}

	if err := r.store.HSet(ctx, key, map[string]string{
		FieldEncoding: r.digest,
		FieldOptions:  r.encoding.String(),
	}); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Upsert creates or replaces a document. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, doc *domdoc.Document) (bool, error) {
	key := r.keys.DocKey(doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(doc, r.store.SupportsTextSearch(ctx), r.digest)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// UpsertMany writes documents in one pipelined round-trip.
func (r *Repo) UpsertMany(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	text := r.store.SupportsTextSearch(ctx)
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    r.keys.DocKey(docs[i].ID()),
			Fields: buildHashFields(&docs[i], text, r.digest),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi (%d docs): %w", len(docs), err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	key := r.keys.DocKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrNotFound
		}
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.keys.DocKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.keys.IndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}
