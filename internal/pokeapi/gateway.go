package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/five82/dexterm/internal/fetch"
)

// DefaultBaseURL is the public PokeAPI v2 root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Getter is the transport the Gateway needs. *fetch.Client implements it:
// Get supersedes earlier Gets, Fetch is used for concurrent fan-out.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var _ Getter = (*fetch.Client)(nil)

// Options configure a Gateway.
type Options struct {
	BaseURL     string
	Client      Getter
	Logger      *slog.Logger
	Concurrency int // limit for fan-out detail fetches; zero means unlimited
}

// Gateway maps catalogue operations onto PokeAPI endpoints.
type Gateway struct {
	baseURL     string
	client      Getter
	logger      *slog.Logger
	concurrency int
}

// New builds a Gateway over the given transport.
func New(opts Options) (*Gateway, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("transport client is required")
	}
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL:     base,
		client:      opts.Client,
		logger:      logger,
		concurrency: opts.Concurrency,
	}, nil
}

// BaseURL returns the normalised API root.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// ListPage fetches one page of the primary listing.
func (g *Gateway) ListPage(ctx context.Context, offset, limit int) (ListPage, error) {
	if offset < 0 {
		offset = 0
	}
	values := url.Values{}
	values.Set("offset", strconv.Itoa(offset))
	values.Set("limit", strconv.Itoa(limit))
	endpoint := g.baseURL + "/pokemon?" + values.Encode()

	body, err := g.client.Get(ctx, endpoint)
	if err != nil {
		return ListPage{}, fmt.Errorf("fetch pokemon list: %w", err)
	}
	var payload listResponse
	if err := decode("/pokemon", body, &payload, "count", "results"); err != nil {
		return ListPage{}, err
	}
	if err := validateResources("/pokemon", payload.Results); err != nil {
		return ListPage{}, err
	}
	page := ListPage{Count: payload.Count, Results: shallow(payload.Results)}
	if payload.Next != nil {
		page.Next = *payload.Next
	}
	if payload.Previous != nil {
		page.Previous = *payload.Previous
	}
	return page, nil
}

// Detail fetches the full record for an ID or name. A 404 yields
// *NotFoundError; other failures keep their transport classification.
func (g *Gateway) Detail(ctx context.Context, idOrName string) (Pokemon, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return Pokemon{}, &NotFoundError{Key: idOrName}
	}
	body, err := g.client.Fetch(ctx, g.baseURL+"/pokemon/"+url.PathEscape(key))
	if err != nil {
		if fetch.IsNotFound(err) {
			return Pokemon{}, &NotFoundError{Key: key}
		}
		return Pokemon{}, fmt.Errorf("fetch pokemon %q: %w", key, err)
	}
	var p Pokemon
	if err := decode("/pokemon/{id}", body, &p, "id", "name"); err != nil {
		return Pokemon{}, err
	}
	if p.ID <= 0 {
		return Pokemon{}, &SchemaError{Endpoint: "/pokemon/{id}", Reason: fmt.Sprintf("invalid id %d", p.ID)}
	}
	if p.URL == "" {
		p.URL = CanonicalURL(g.baseURL, p.ID)
	}
	return p, nil
}

// DetailByID is Detail keyed by numeric identifier.
func (g *Gateway) DetailByID(ctx context.Context, id int) (Pokemon, error) {
	return g.Detail(ctx, strconv.Itoa(id))
}

// ByCategory fetches every member of a category in API order.
func (g *Gateway) ByCategory(ctx context.Context, name string) ([]Pokemon, error) {
	category := strings.TrimSpace(name)
	if category == "" {
		return nil, fmt.Errorf("category name required")
	}
	body, err := g.client.Get(ctx, g.baseURL+"/type/"+url.PathEscape(category))
	if err != nil {
		return nil, fmt.Errorf("fetch pokemon of type %s: %w", category, err)
	}
	var payload typeResponse
	if err := decode("/type/{name}", body, &payload, "pokemon"); err != nil {
		return nil, err
	}
	members := make([]NamedResource, 0, len(payload.Pokemon))
	for _, m := range payload.Pokemon {
		members = append(members, m.Pokemon)
	}
	if err := validateResources("/type/{name}", members); err != nil {
		return nil, err
	}
	return shallow(members), nil
}

// AllCategories lists every category.
func (g *Gateway) AllCategories(ctx context.Context) ([]Category, error) {
	body, err := g.client.Fetch(ctx, g.baseURL+"/type")
	if err != nil {
		return nil, fmt.Errorf("fetch pokemon types: %w", err)
	}
	var payload typeListResponse
	if err := decode("/type", body, &payload, "results"); err != nil {
		return nil, err
	}
	if err := validateResources("/type", payload.Results); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// SearchByName looks up an exact name or ID. It never fails: any error,
// including not-found, yields an empty result.
func (g *Gateway) SearchByName(ctx context.Context, query string) []Pokemon {
	p, err := g.Detail(ctx, strings.ToLower(query))
	if err != nil {
		g.logger.Debug("search miss", slog.String("query", query), slog.String("error", err.Error()))
		return []Pokemon{}
	}
	return []Pokemon{p}
}

// BatchDetail fetches detail for every entry concurrently. Entries whose fetch
// fails are logged and dropped; survivors keep input order.
func (g *Gateway) BatchDetail(ctx context.Context, entries []Pokemon) []Pokemon {
	details, errs := g.BatchLookup(ctx, entries)
	out := make([]Pokemon, 0, len(entries))
	for i := range entries {
		if errs[i] == nil {
			out = append(out, details[i])
		}
	}
	return out
}

// Enrich merges detail into every entry, fetched concurrently. Entries whose
// fetch fails are returned unchanged.
func (g *Gateway) Enrich(ctx context.Context, entries []Pokemon) []Pokemon {
	details, _ := g.BatchLookup(ctx, entries)
	return details
}

// BatchLookup fetches detail for every entry concurrently and reports each
// outcome by index. details[i] is the merged entity when errs[i] is nil and
// the input entry otherwise.
func (g *Gateway) BatchLookup(ctx context.Context, entries []Pokemon) ([]Pokemon, []error) {
	details := make([]Pokemon, len(entries))
	errs := make([]error, len(entries))
	copy(details, entries)

	var group errgroup.Group
	if g.concurrency > 0 {
		group.SetLimit(g.concurrency)
	}
	for i, entry := range entries {
		group.Go(func() error {
			key := entry.Name
			if entry.ID > 0 {
				key = strconv.Itoa(entry.ID)
			}
			full, err := g.Detail(ctx, key)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					g.logger.Warn("detail fetch failed",
						slog.String("pokemon", key),
						slog.String("error", err.Error()),
					)
				}
				errs[i] = err
				return nil
			}
			details[i] = entry.Merge(full)
			return nil
		})
	}
	_ = group.Wait()
	return details, errs
}

func parseBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
