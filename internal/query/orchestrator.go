package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/dexterm/internal/fetch"
	"github.com/five82/dexterm/internal/pokeapi"
	"github.com/five82/dexterm/internal/state"
)

// DefaultPageSize is the number of entries per list page.
const DefaultPageSize = 15

// maxCancelledAttempts bounds how often a current run reloads after its
// request was cancelled by a stale run.
const maxCancelledAttempts = 3

// ErrSuperseded is returned by Run when a newer run replaced it. Its results
// were discarded and state was left to the newer run.
var ErrSuperseded = errors.New("query superseded by a newer run")

// Gateway is the remote catalogue the orchestrator reads from.
// *pokeapi.Gateway implements it.
type Gateway interface {
	ListPage(ctx context.Context, offset, limit int) (pokeapi.ListPage, error)
	Detail(ctx context.Context, idOrName string) (pokeapi.Pokemon, error)
	ByCategory(ctx context.Context, name string) ([]pokeapi.Pokemon, error)
	AllCategories(ctx context.Context) ([]pokeapi.Category, error)
	SearchByName(ctx context.Context, query string) []pokeapi.Pokemon
	Enrich(ctx context.Context, entries []pokeapi.Pokemon) []pokeapi.Pokemon
}

var _ Gateway = (*pokeapi.Gateway)(nil)

// Options configure an Orchestrator.
type Options struct {
	Gateway  Gateway
	Store    *state.Store
	PageSize int
	Logger   *slog.Logger
}

// Result is one page of list output.
type Result struct {
	Items []pokeapi.Pokemon
	Count int
}

// Orchestrator turns queries into gateway calls and publishes the outcome to
// the state store. Only the most recent Run may publish.
type Orchestrator struct {
	gateway  Gateway
	store    *state.Store
	pageSize int
	logger   *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	last   state.Query
}

// New builds an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gateway:  opts.Gateway,
		store:    store,
		pageSize: size,
		logger:   logger,
		last:     state.DefaultQuery(),
	}, nil
}

// Store returns the state store results are published to.
func (o *Orchestrator) Store() *state.Store {
	return o.store
}

// PageSize returns the list page length.
func (o *Orchestrator) PageSize() int {
	return o.pageSize
}

// Query returns the query most recently passed to Run.
func (o *Orchestrator) Query() state.Query {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Run executes q and publishes the outcome. Starting a run cancels the one
// before it; a run that is no longer current returns ErrSuperseded without
// touching state.
func (o *Orchestrator) Run(ctx context.Context, q state.Query) (Result, error) {
	q = q.Normalize()

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	gen := o.gen
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.last = q
	o.store.Begin(q, gen)
	o.mu.Unlock()
	defer cancel()

	res, err := o.load(runCtx, q)
	// A stale run reaching the client after this one cancels its request.
	for attempt := 1; attempt < maxCancelledAttempts && errors.Is(err, fetch.ErrCancelled) && o.current(gen) && runCtx.Err() == nil; attempt++ {
		res, err = o.load(runCtx, q)
	}

	if !o.current(gen) {
		return Result{}, ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, fetch.ErrCancelled) {
			return Result{}, ErrSuperseded
		}
		o.logger.Error("list query failed",
			slog.Int("page", q.Page),
			slog.String("category", q.Category),
			slog.String("sort", string(q.Sort)),
			slog.String("error", err.Error()),
		)
		if !o.store.Fail(gen, err) {
			return Result{}, ErrSuperseded
		}
		return Result{}, err
	}
	if !o.store.Finish(gen, res.Items, res.Count) {
		return Result{}, ErrSuperseded
	}
	return res, nil
}

// Retry reruns the most recent query.
func (o *Orchestrator) Retry(ctx context.Context) (Result, error) {
	return o.Run(ctx, o.Query())
}

// SortList returns a sorted copy of items. Sorting by base experience fetches
// detail for every item; entries whose detail cannot be fetched sort as 0.
func (o *Orchestrator) SortList(ctx context.Context, items []pokeapi.Pokemon, mode state.Sort) []pokeapi.Pokemon {
	out := slices.Clone(items)
	switch mode {
	case state.SortByName:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b pokeapi.Pokemon) int {
			return c.CompareString(a.Name, b.Name)
		})
	case state.SortByBaseExperience:
		out = o.gateway.Enrich(ctx, out)
		slices.SortStableFunc(out, func(a, b pokeapi.Pokemon) int {
			return cmp.Compare(b.BaseExp(), a.BaseExp())
		})
	default:
		slices.SortStableFunc(out, func(a, b pokeapi.Pokemon) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}
	return out
}

// Enrich merges an observed full entity into the loaded list.
func (o *Orchestrator) Enrich(p pokeapi.Pokemon) bool {
	return o.store.MergeItem(p)
}

// EnrichRow fetches detail for one loaded row and merges it into the list
// without touching the detail view.
func (o *Orchestrator) EnrichRow(ctx context.Context, id int) (pokeapi.Pokemon, error) {
	p, err := o.gateway.Detail(ctx, strconv.Itoa(id))
	if err != nil {
		return pokeapi.Pokemon{}, err
	}
	o.store.MergeItem(p)
	return p, nil
}

// LoadDetail fetches one entity for the detail view and merges it into the
// loaded list.
func (o *Orchestrator) LoadDetail(ctx context.Context, id int) (pokeapi.Pokemon, error) {
	o.store.BeginDetail()
	p, err := o.gateway.Detail(ctx, strconv.Itoa(id))
	if err != nil {
		o.store.SetDetail(nil, err)
		return pokeapi.Pokemon{}, err
	}
	o.store.SetDetail(&p, nil)
	o.store.MergeItem(p)
	return p, nil
}

// LoadCategories fills the category facet list.
func (o *Orchestrator) LoadCategories(ctx context.Context) error {
	categories, err := o.gateway.AllCategories(ctx)
	if err != nil {
		o.logger.Warn("category list unavailable", slog.String("error", err.Error()))
		return err
	}
	o.store.SetCategories(categories)
	return nil
}

func (o *Orchestrator) current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.gen
}

func (o *Orchestrator) load(ctx context.Context, q state.Query) (Result, error) {
	if term := q.SearchTerm(); term != "" {
		items := o.gateway.SearchByName(ctx, term)
		return Result{Items: items, Count: len(items)}, nil
	}

	offset := (q.Page - 1) * o.pageSize
	if q.Category != state.AllCategories {
		members, err := o.gateway.ByCategory(ctx, q.Category)
		if err != nil {
			return Result{}, err
		}
		sorted := o.SortList(ctx, members, q.Sort)
		return Result{Items: window(sorted, offset, o.pageSize), Count: len(members)}, nil
	}

	page, err := o.gateway.ListPage(ctx, offset, o.pageSize)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: o.SortList(ctx, page.Results, q.Sort), Count: page.Count}, nil
}

// window returns items[offset:offset+limit], clamped to the slice.
func window(items []pokeapi.Pokemon, offset, limit int) []pokeapi.Pokemon {
	if offset >= len(items) {
		return []pokeapi.Pokemon{}
	}
	end := min(offset+limit, len(items))
	return slices.Clone(items[offset:end])
}
