package video

import (
	"context"
	"strings"

	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

// Resolver picks the primary video for a module. Lookup failures are
// logged and reported as "no video"; they never fail the caller.
type Resolver struct {
	searcher Searcher
	cfg      Config
	log      *logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(s Searcher, cfg Config, log *logger.Logger) *Resolver {
	if s == nil {
		s = Disabled{}
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{searcher: s, cfg: cfg, log: log.With("component", "video")}
}

// Resolve searches for query and returns the first hit as an unsaved video
// resource, or nil when there is no query, no hit, or the search failed.
// module only labels log lines. Duration is filled best-effort.
func (r *Resolver) Resolve(ctx context.Context, module, query string) *store.Resource {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	videos, err := r.search(ctx, query)
	if err != nil {
		r.log.Warn("video lookup failed", "module", module, "query", query, "error", err)
		return nil
	}
	if len(videos) == 0 {
		r.log.Debug("no video found", "module", module, "query", query)
		return nil
	}

	v := videos[0]
	res := &store.Resource{
		Type:         store.ResourceTypeVideo,
		Title:        v.Title,
		VideoID:      v.ID,
		ChannelTitle: v.ChannelTitle,
		ThumbnailURL: v.ThumbnailURL,
		OrderIndex:   1,
	}
	if r.cfg.FetchDuration {
		res.DurationSeconds = r.duration(ctx, module, v.ID)
	}
	return res
}

func (r *Resolver) search(ctx context.Context, query string) ([]Video, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.searcher.Search(ctx, query, r.cfg.MaxResults)
}

func (r *Resolver) duration(ctx context.Context, module, videoID string) int {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	d, err := r.searcher.Details(ctx, videoID)
	if err != nil {
		r.log.Warn("video details failed", "module", module, "video", videoID, "error", err)
		return 0
	}
	if d == nil {
		return 0
	}
	return ParseISODuration(d.Duration)
}

func (r *Resolver) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.Timeout)
}
