// apps/go-server/internal/imagery/imagery.go
//
// Country photo lookup for the game and results views.
//
// Resolution order for a country id:
//   1. A bundled photo (assets/images.txt manifest, or a file at
//      {StaticDir}/images/countries/{ID}.jpg).
//   2. The Unsplash search API, queried with "{English name} landmark landscape".
//   3. The default placeholder.
//
// Remote failures are logged and fall through to the placeholder. Local and
// remote hits are cached per id; placeholders are not, so a transient outage
// does not pin a country to the globe picture. Concurrent lookups for one id
// share a single remote request.

package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultImage is served when nothing better is found.
	DefaultImage = "/default-globe.jpg"
	// DefaultEndpoint is the Unsplash photo search URL.
	DefaultEndpoint = "https://api.unsplash.com/search/photos"

	localPrefix = "/images/countries/"
)

// NameFunc maps a country id to the English name used in the search query.
type NameFunc func(id string) string

// Options configures a Resolver.
type Options struct {
	Manifest  []string     // ids with a bundled photo
	StaticDir string       // optional directory holding images/countries/*.jpg
	APIKey    string       // Unsplash access key; empty disables remote lookups
	Endpoint  string       // defaults to DefaultEndpoint
	Client    *http.Client // defaults to a client with a 5s timeout
	Names     NameFunc     // defaults to the id itself
	Cache     Cache        // defaults to NewMemoryCache()
}

// Resolver finds a display image URL per country.
type Resolver struct {
	local     map[string]struct{}
	staticDir string
	apiKey    string
	endpoint  string
	client    *http.Client
	names     NameFunc
	cache     Cache
	group     singleflight.Group
}

// New builds a Resolver.
func New(opts Options) *Resolver {
	r := &Resolver{
		local:     make(map[string]struct{}, len(opts.Manifest)),
		staticDir: opts.StaticDir,
		apiKey:    opts.APIKey,
		endpoint:  opts.Endpoint,
		client:    opts.Client,
		names:     opts.Names,
		cache:     opts.Cache,
	}
	for _, id := range opts.Manifest {
		r.local[strings.ToUpper(strings.TrimSpace(id))] = struct{}{}
	}
	if r.endpoint == "" {
		r.endpoint = DefaultEndpoint
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: 5 * time.Second}
	}
	if r.names == nil {
		r.names = func(id string) string { return id }
	}
	if r.cache == nil {
		r.cache = NewMemoryCache()
	}
	return r
}

// Resolve returns the image URL for id. It never fails; the placeholder is
// the last resort.
func (r *Resolver) Resolve(ctx context.Context, id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return DefaultImage
	}

	if u, ok, err := r.cache.Get(ctx, id); err != nil {
		log.Warn().Err(err).Str("country", id).Msg("image cache get")
	} else if ok {
		return u
	}

	v, _, _ := r.group.Do(id, func() (any, error) {
		u := r.lookup(ctx, id)
		if u != DefaultImage {
			if err := r.cache.Set(ctx, id, u); err != nil {
				log.Warn().Err(err).Str("country", id).Msg("image cache set")
			}
		}
		return u, nil
	})
	return v.(string)
}

func (r *Resolver) lookup(ctx context.Context, id string) string {
	if r.hasLocal(id) {
		return localPrefix + id + ".jpg"
	}
	if r.apiKey == "" {
		return DefaultImage
	}
	u, err := r.search(ctx, r.names(id)+" landmark landscape")
	if err != nil {
		log.Warn().Err(err).Str("country", id).Msg("remote image lookup failed")
		return DefaultImage
	}
	if u == "" {
		return DefaultImage
	}
	return u
}

func (r *Resolver) hasLocal(id string) bool {
	if _, ok := r.local[id]; ok {
		return true
	}
	if r.staticDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(r.staticDir, "images", "countries", id+".jpg"))
	return err == nil
}

// searchResponse is the subset of the Unsplash search payload we read.
type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

func (r *Resolver) search(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("orientation", "landscape")
	q.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+r.apiKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash: status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("unsplash: decode: %w", err)
	}
	if len(body.Results) == 0 {
		return "", nil
	}
	return body.Results[0].URLs.Regular, nil
}
