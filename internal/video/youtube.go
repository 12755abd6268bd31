package video

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/abhisek/learnpath/internal/apperr"
)

const searchService = "video-search"

// YouTube implements Searcher on the YouTube Data API v3.
type YouTube struct {
	svc *youtube.Service
}

// NewYouTube creates a YouTube searcher. An API key is required.
func NewYouTube(ctx context.Context, cfg Config, opts ...option.ClientOption) (*YouTube, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube API key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}
	return &YouTube{svc: svc}, nil
}

// Search lists medium-length videos by relevance with strict safe search.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	resp, err := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		VideoDuration("medium").
		Order("relevance").
		SafeSearch("strict").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapAPIError(ctx, err)
	}

	out := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		out = append(out, Video{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ThumbnailURL: thumbnailURL(item.Snippet.Thumbnails),
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	return out, nil
}

// Details fetches the content details of one video.
func (y *YouTube) Details(ctx context.Context, videoID string) (*Details, error) {
	resp, err := y.svc.Videos.List([]string{"contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapAPIError(ctx, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return nil, apperr.NotFound("video", videoID)
	}
	return &Details{ID: videoID, Duration: resp.Items[0].ContentDetails.Duration}, nil
}

func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

func mapAPIError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &apperr.ExternalServiceError{Service: searchService, Timeout: true, Err: err}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &apperr.ExternalServiceError{Service: searchService, Err: fmt.Errorf("status %d: %w", gerr.Code, err)}
	}
	return &apperr.ExternalServiceError{Service: searchService, Err: err}
}
