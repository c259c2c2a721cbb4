package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jdholdren/spdb/internal/spdb"
)

const (
	kindComment   = "t1"
	kindLink      = "t3"
	kindSubreddit = "t5"
)

type (
	listing struct {
		Data struct {
			After    string  `json:"after"`
			Children []thing `json:"children"`
		} `json:"data"`
	}

	thing struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}

	link struct {
		ID         string  `json:"id"`
		Title      string  `json:"title"`
		Permalink  string  `json:"permalink"`
		Subreddit  string  `json:"subreddit"`
		CreatedUTC float64 `json:"created_utc"`
	}

	comment struct {
		ID            string  `json:"id"`
		Author        string  `json:"author"`
		Body          string  `json:"body"`
		LinkPermalink string  `json:"link_permalink"`
		Subreddit     string  `json:"subreddit"`
		CreatedUTC    float64 `json:"created_utc"`
	}

	subreddit struct {
		DisplayName string `json:"display_name"`
	}

	multi struct {
		Data struct {
			Name       string `json:"name"`
			Subreddits []struct {
				Name string `json:"name"`
			} `json:"subreddits"`
		} `json:"data"`
	}
)

// SavedItems lazily pages through everything the user has saved, newest first.
// Saved things other than posts and comments are skipped.
func (c *Client) SavedItems(ctx context.Context) iter.Seq2[spdb.SavedItem, error] {
	path := fmt.Sprintf("/user/%s/saved", url.PathEscape(c.username))

	return func(yield func(spdb.SavedItem, error) bool) {
		for th, err := range c.paginate(ctx, path) {
			if err != nil {
				yield(nil, err)
				return
			}

			item, err := savedItem(th)
			if err != nil {
				yield(nil, err)
				return
			}
			if item == nil {
				slog.DebugContext(ctx, "skipping saved thing", "kind", th.Kind)
				continue
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

func savedItem(th thing) (spdb.SavedItem, error) {
	switch th.Kind {
	case kindLink:
		var l link
		if err := json.Unmarshal(th.Data, &l); err != nil {
			return nil, fmt.Errorf("error decoding post: %w", err)
		}
		return spdb.Post{
			ID:         l.ID,
			Title:      l.Title,
			Permalink:  l.Permalink,
			Subreddit:  l.Subreddit,
			CreatedUTC: l.CreatedUTC,
		}, nil
	case kindComment:
		var cm comment
		if err := json.Unmarshal(th.Data, &cm); err != nil {
			return nil, fmt.Errorf("error decoding comment: %w", err)
		}
		return spdb.Comment{
			ID:                  cm.ID,
			Author:              cm.Author,
			Body:                cm.Body,
			SubmissionPermalink: sitePath(cm.LinkPermalink),
			Subreddit:           cm.Subreddit,
			CreatedUTC:          cm.CreatedUTC,
		}, nil
	default:
		return nil, nil
	}
}

// Reduces a full link to the site relative path without its trailing slash.
func sitePath(permalink string) string {
	if u, err := url.Parse(permalink); err == nil && u.Path != "" {
		permalink = u.Path
	}
	return strings.TrimSuffix(permalink, "/")
}

// Subscriptions lists the display names of the subreddits the user is subscribed to.
func (c *Client) Subscriptions(ctx context.Context) ([]string, error) {
	names := []string{}
	for th, err := range c.paginate(ctx, "/subreddits/mine/subscriber") {
		if err != nil {
			return nil, err
		}
		if th.Kind != kindSubreddit {
			continue
		}

		var sub subreddit
		if err := json.Unmarshal(th.Data, &sub); err != nil {
			return nil, fmt.Errorf("error decoding subreddit: %w", err)
		}
		names = append(names, sub.DisplayName)
	}

	return names, nil
}

// Multireddits maps each of the user's multireddits to the subreddits in it.
func (c *Client) Multireddits(ctx context.Context) (map[string][]string, error) {
	var multis []multi
	if err := c.get(ctx, "/api/multi/mine", url.Values{"raw_json": {"1"}}, &multis); err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(multis))
	for _, m := range multis {
		subs := []string{}
		for _, s := range m.Data.Subreddits {
			subs = append(subs, s.Name)
		}
		out[m.Data.Name] = subs
	}

	return out, nil
}

// Uncategorised lists the subscribed subreddits that aren't part of any
// multireddit, sorted case-insensitively.
func (c *Client) Uncategorised(ctx context.Context) ([]string, error) {
	var (
		subs   []string
		multis map[string][]string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		subs, err = c.Subscriptions(gCtx)
		return err
	})
	g.Go(func() (err error) {
		multis, err = c.Multireddits(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return uncategorised(subs, multis), nil
}

func uncategorised(subs []string, multis map[string][]string) []string {
	categorised := make(map[string]struct{})
	for _, names := range multis {
		for _, name := range names {
			categorised[strings.ToLower(name)] = struct{}{}
		}
	}

	out := []string{}
	for _, sub := range subs {
		if _, ok := categorised[strings.ToLower(sub)]; !ok {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	return out
}

// Walks every page of a listing, one request per page.
func (c *Client) paginate(ctx context.Context, path string) iter.Seq2[thing, error] {
	return func(yield func(thing, error) bool) {
		after := ""
		for page := 1; ; page++ {
			query := url.Values{
				"limit":    {strconv.Itoa(pageSize)},
				"raw_json": {"1"},
			}
			if after != "" {
				query.Set("after", after)
			}

			var l listing
			if err := c.get(ctx, path, query, &l); err != nil {
				yield(thing{}, err)
				return
			}
			slog.DebugContext(ctx, "fetched listing page", "path", path, "page", page, "count", len(l.Data.Children))

			for _, th := range l.Data.Children {
				if !yield(th, nil) {
					return
				}
			}

			if l.Data.After == "" || len(l.Data.Children) == 0 {
				return
			}
			after = l.Data.After
		}
	}
}
