// Package video finds a learning video for a module's search query.
package video

import (
	"context"
	"os"
	"strconv"
	"time"
)

// Video is a single search hit.
type Video struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	ChannelTitle string
	PublishedAt  string
}

// Details holds per-video metadata that search results lack.
type Details struct {
	ID string
	// Duration is the ISO-8601 duration as reported, e.g. "PT12M31S".
	Duration string
}

// Searcher is the video-search capability.
type Searcher interface {
	// Search returns up to limit videos for query, best match first.
	// An empty result is not an error.
	Search(ctx context.Context, query string, limit int) ([]Video, error)

	// Details looks up a single video.
	Details(ctx context.Context, videoID string) (*Details, error)
}

// Config configures the YouTube searcher and the resolver.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// MaxResults is the search page size.
	MaxResults int
	// Timeout bounds each search or detail call.
	Timeout time.Duration
	// FetchDuration enables the per-video detail lookup.
	FetchDuration bool
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		MaxResults:    3,
		Timeout:       10 * time.Second,
		FetchDuration: true,
	}
}

// ConfigFromEnv reads LEARNPATH_YOUTUBE_* variables, falling back to
// YOUTUBE_API_KEY for the key.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.APIKey = os.Getenv("LEARNPATH_YOUTUBE_API_KEY")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if n, err := strconv.Atoi(os.Getenv("LEARNPATH_YOUTUBE_MAX_RESULTS")); err == nil && n > 0 {
		cfg.MaxResults = n
	}
	if d, err := time.ParseDuration(os.Getenv("LEARNPATH_YOUTUBE_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if v, err := strconv.ParseBool(os.Getenv("LEARNPATH_YOUTUBE_DURATIONS")); err == nil {
		cfg.FetchDuration = v
	}
	return cfg
}

// Disabled is a Searcher that never finds anything. It stands in when no
// API key is configured.
type Disabled struct{}

func (Disabled) Search(context.Context, string, int) ([]Video, error) { return nil, nil }

func (Disabled) Details(context.Context, string) (*Details, error) { return nil, nil }
