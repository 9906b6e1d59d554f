package lexlsh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/lexlsh/internal/db"
	dbRedis "github.com/kailas-cloud/lexlsh/internal/db/redis"
	"github.com/kailas-cloud/lexlsh/internal/domain"
	dombatch "github.com/kailas-cloud/lexlsh/internal/domain/batch"
	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/mode"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/request"
	"github.com/kailas-cloud/lexlsh/internal/domain/search/result"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	documentrepo "github.com/kailas-cloud/lexlsh/internal/repository/document"
	searchrepo "github.com/kailas-cloud/lexlsh/internal/repository/search"
	batchuc "github.com/kailas-cloud/lexlsh/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/lexlsh/internal/usecase/document"
	encodinguc "github.com/kailas-cloud/lexlsh/internal/usecase/encoding"
	healthuc "github.com/kailas-cloud/lexlsh/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lexlsh/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the use cases.
type encodingUseCase interface {
	Encode(ctx context.Context, vector []float32) (lsh.Result, error)
	EncodeValues(ctx context.Context, values []string) (lsh.Result, error)
	EncodeText(ctx context.Context, text string) (encodinguc.Encoded, error)
	Explain(ctx context.Context, vector []float32) (lsh.Trace, error)
}

type documentUseCase interface {
	Upsert(ctx context.Context, id string, in documentuc.Input) (domdoc.Document, bool, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type batchUseCase interface {
	Upsert(ctx context.Context, items []batchuc.Item) []dombatch.Result
	Delete(ctx context.Context, ids []string) []dombatch.Result
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Similar(
		ctx context.Context, id string, m mode.Mode, limit int, minOverlap float64, includeVectors bool,
	) (result.Page, error)
}

// Client is the lexlsh SDK entry point.
type Client struct {
	store     db.Store
	encSvc    encodingUseCase
	docSvc    documentUseCase
	searchSvc searchUseCase
	batchSvc  batchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a lexlsh Client, connects to the database and creates the
// fingerprint index if it does not exist yet.
// The provided context is used for the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("lexlsh: database address required (use WithValkey or WithRedis)")
	}

	enc, err := lsh.NewEncoder(cfg.encoding.lsh())
	if err != nil {
		return nil, fmt.Errorf("lexlsh: encoding options: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("lexlsh: database not ready: %w", err)
	}

	client, err := wireClient(ctx, store, enc, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return client, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	storeCfg, err := dbRedis.ConfigForDriver(cfg.driver, cfg.addrs, cfg.password)
	if err != nil {
		return nil, fmt.Errorf("lexlsh: %w", err)
	}
	storeCfg.Standalone = cfg.standalone

	s, err := dbRedis.NewStore(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("lexlsh: create %s store: %w", cfg.driver, err)
	}
	return s, nil
}

func wireClient(
	ctx context.Context, store db.Store, enc *lsh.Encoder, cfg *clientConfig, obs *observer,
) (*Client, error) {
	keys := domain.NewKeyspace(cfg.keyPrefix)
	docRepo := documentrepo.New(store, keys).WithEncoding(enc.Options())
	searchRepo := searchrepo.New(store, keys).WithMaxTagCandidates(cfg.maxTagCandidates)

	if err := docRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("lexlsh: ensure index: %w", err)
	}

	// A typed nil inside the interface would look configured, so leave it unset.
	var embedder encodinguc.Embedder
	if cfg.embedder != nil {
		embedder = adaptEmbedder(cfg.embedder)
	}

	encSvc := encodinguc.New(enc, embedder, cfg.workers)
	docSvc := documentuc.New(docRepo, encSvc)
	searchSvc := searchuc.New(searchRepo, docSvc, encSvc, searchuc.Limits{
		CandidateMultiplier: cfg.candidateMultiplier,
	})
	batchSvc := batchuc.New(docRepo, docSvc, encSvc)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	if cfg.workers > 0 {
		batchSvc = batchSvc.WithWorkers(cfg.workers)
	}

	var embChecker healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(interface{ HealthCheck(context.Context) error }); ok {
		embChecker = hc
	}
	healthSvc := healthuc.New(store, store, keys.IndexName(), embChecker)

	return &Client{
		store:     store,
		encSvc:    encSvc,
		docSvc:    docSvc,
		searchSvc: searchSvc,
		batchSvc:  batchSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{
		docSvc:   c.docSvc,
		batchSvc: c.batchSvc,
		obs:      c.obs,
	}
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Encode fingerprints a vector without storing it.
func (c *Client) Encode(ctx context.Context, vector []float32) (fp Fingerprint, err error) {
	start := time.Now()
	defer func() { c.obs.observe("encode", start, err) }()

	res, err := c.encSvc.Encode(ctx, vector)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("encode: %w", err)
	}
	if res.Empty() {
		c.obs.emptyFingerprint("encode")
	}
	return Fingerprint{Tokens: res.Tokens, Shingles: res.Shingles}, nil
}

// EncodeValues fingerprints pre-rendered dimension values. Values that are not
// decimals (such as "color:red") are kept verbatim as keywords.
func (c *Client) EncodeValues(ctx context.Context, values []string) (fp Fingerprint, err error) {
	start := time.Now()
	defer func() { c.obs.observe("encode_values", start, err) }()

	res, err := c.encSvc.EncodeValues(ctx, values)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("encode values: %w", err)
	}
	if res.Empty() {
		c.obs.emptyFingerprint("encode_values")
	}
	return Fingerprint{Tokens: res.Tokens, Shingles: res.Shingles}, nil
}

// EncodeText embeds text with the configured Embedder and fingerprints the result.
func (c *Client) EncodeText(ctx context.Context, text string) (fp Fingerprint, err error) {
	start := time.Now()
	defer func() { c.obs.observe("encode_text", start, err) }()

	res, err := c.encSvc.EncodeText(ctx, text)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("encode text: %w", err)
	}
	if res.Empty() {
		c.obs.emptyFingerprint("encode_text")
	}
	return Fingerprint{Tokens: res.Tokens, Shingles: res.Shingles, Vector: res.Vector}, nil
}

// Explain returns every intermediate stage of the encoding of vector.
func (c *Client) Explain(ctx context.Context, vector []float32) (Trace, error) {
	tr, err := c.encSvc.Explain(ctx, vector)
	if err != nil {
		return Trace{}, fmt.Errorf("explain: %w", err)
	}
	return Trace(tr), nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult(r), nil
}

// batchEmbedderAdapter also forwards BatchEmbed when the public embedder has it.
type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult(r), nil
}

func adaptEmbedder(e Embedder) encodinguc.Embedder {
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: embedderAdapter{inner: e}, batch: be}
	}
	return &embedderAdapter{inner: e}
}
