// Package source fetches candidate posts from Reddit feeds.
package source

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matheuskafuri/leadfinder/internal/lead"
)

const permalinkHost = "https://reddit.com"

type Options struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
	RateLimit   float64 // requests per second, 0 disables limiting
	Retries     int
	TimeRange   string
	Client      *http.Client
	Logger      *zap.Logger
}

// Reddit reads subreddit search feeds. All fetches share one rate limiter.
type Reddit struct {
	baseURL     string
	parser      *gofeed.Parser
	limiter     *rate.Limiter
	concurrency int
	retries     int
	timeRange   string
	log         *zap.Logger
}

func NewReddit(opts Options) *Reddit {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.reddit.com"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "leadfinder/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	parser := gofeed.NewParser()
	parser.Client = opts.Client
	parser.UserAgent = opts.UserAgent

	return &Reddit{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		parser:      parser,
		limiter:     limiter,
		concurrency: opts.Concurrency,
		retries:     max(0, opts.Retries),
		timeRange:   opts.TimeRange,
		log:         opts.Logger,
	}
}

// Fetch reads up to limit posts from each subreddit in parallel. A failing
// subreddit is logged and contributes nothing. Posts are deduplicated by ID
// in subreddit order. The error is non-nil only when ctx ends.
func (r *Reddit) Fetch(ctx context.Context, subreddits []string, query string, limit int) ([]lead.Post, error) {
	results := make([][]lead.Post, len(subreddits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, sub := range subreddits {
		i, sub := i, sub
		g.Go(func() error {
			posts, err := r.fetchSubreddit(gctx, sub, query, limit)
			if err != nil {
				r.log.Warn("subreddit fetch failed", zap.String("subreddit", sub), zap.Error(err))
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []lead.Post
	for _, posts := range results {
		for _, p := range posts {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}

	out = FilterByTimeRange(out, r.timeRange, time.Now())
	r.log.Debug("fetched posts",
		zap.Int("subreddits", len(subreddits)),
		zap.Int("posts", len(out)),
	)
	return out, nil
}

// FeedURL builds the feed address for one subreddit.
func (r *Reddit) FeedURL(subreddit, query string, limit int) string {
	v := url.Values{}
	v.Set("limit", fmt.Sprint(limit))
	if query == "" {
		return fmt.Sprintf("%s/r/%s/new.rss?%s", r.baseURL, url.PathEscape(subreddit), v.Encode())
	}
	v.Set("q", query)
	v.Set("restrict_sr", "on")
	v.Set("sort", "new")
	v.Set("t", timeFilter(r.timeRange))
	return fmt.Sprintf("%s/r/%s/search.rss?%s", r.baseURL, url.PathEscape(subreddit), v.Encode())
}

func timeFilter(timeRange string) string {
	switch timeRange {
	case "today":
		return "day"
	case "last_week":
		return "week"
	case "last_month":
		return "month"
	default:
		return "all"
	}
}

func (r *Reddit) fetchSubreddit(ctx context.Context, sub, query string, limit int) ([]lead.Post, error) {
	feedURL := r.FeedURL(sub, query, limit)

	var feed *gofeed.Feed
	op := func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		f, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			var httpErr gofeed.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode != http.StatusTooManyRequests && httpErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		feed = f
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.retries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("fetching r/%s: %w", sub, err)
	}

	posts := make([]lead.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(posts) >= limit {
			break
		}
		posts = append(posts, toPost(item, sub))
	}
	return posts, nil
}

func toPost(item *gofeed.Item, sub string) lead.Post {
	created := time.Now()
	if item.PublishedParsed != nil {
		created = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		created = *item.UpdatedParsed
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	author := "[deleted]"
	if item.Author != nil && item.Author.Name != "" {
		author = strings.TrimPrefix(item.Author.Name, "/u/")
	}

	id := item.GUID
	if id == "" {
		id = postID(item.Link)
	}

	return lead.Post{
		ID:        id,
		Title:     html.UnescapeString(item.Title),
		Body:      cleanBody(body),
		Author:    author,
		Source:    "r/" + sub,
		CreatedAt: created,
		Permalink: permalink(item.Link),
	}
}

// permalink rewrites a feed link onto the canonical host.
func permalink(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return link
	}
	return permalinkHost + u.Path
}

func postID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

// cleanBody strips markup and the feed's trailing "submitted by" footer.
func cleanBody(s string) string {
	s = html.UnescapeString(stripHTML(s))
	if i := strings.LastIndex(s, "submitted by"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FilterByTimeRange drops posts older than the range allows. Unknown ranges
// and all_time keep everything.
func FilterByTimeRange(posts []lead.Post, timeRange string, now time.Time) []lead.Post {
	var maxAge time.Duration
	switch timeRange {
	case "today":
		maxAge = 24 * time.Hour
	case "last_week":
		maxAge = 10 * 24 * time.Hour
	case "last_month":
		maxAge = 45 * 24 * time.Hour
	default:
		return posts
	}
	out := posts[:0:0]
	for _, p := range posts {
		if now.Sub(p.CreatedAt) <= maxAge {
			out = append(out, p)
		}
	}
	return out
}
