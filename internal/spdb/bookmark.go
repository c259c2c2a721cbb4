package spdb

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

type (
	// Bookmark is a saved reddit item mirrored locally.
	Bookmark struct {
		ID          string    `db:"id"`
		URL         string    `db:"url"`
		Title       string    `db:"title"`
		Subreddit   string    `db:"subreddit"`
		DateCreated time.Time `db:"date_created"`

		Tags []Tag `db:"-"`
	}

	// Tag is a user-assigned label. Names are always lowercase.
	Tag struct {
		Name string `db:"name"`
	}

	// TagCount is a tag along with how many bookmarks carry it.
	TagCount struct {
		Name      string `db:"name"`
		Bookmarks int    `db:"bookmarks"`
	}

	NewBookmarkArgs struct {
		ID        string
		URL       string
		Title     string
		Subreddit string
		Tags      []Tag

		// Either epoch seconds or a time.Time.
		DateCreated any
	}
)

// NewBookmark builds a bookmark, resolving the creation time from either epoch
// seconds or an already resolved time. Times are kept in UTC.
func NewBookmark(args NewBookmarkArgs) (Bookmark, error) {
	created, err := creationTime(args.DateCreated)
	if err != nil {
		return Bookmark{}, err
	}

	bm := Bookmark{
		ID:          args.ID,
		URL:         args.URL,
		Title:       args.Title,
		Subreddit:   args.Subreddit,
		DateCreated: created,
	}
	for _, t := range args.Tags {
		bm.ApplyTag(t)
	}

	return bm, nil
}

func creationTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case float64:
		return fromEpoch(v), nil
	case float32:
		return fromEpoch(float64(v)), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, v.String())
		}
		return fromEpoch(f), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, v)
	}
}

func fromEpoch(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// ApplyTag attaches the tag unless the bookmark already carries it.
func (b *Bookmark) ApplyTag(t Tag) {
	t.Name = NormalizeTagName(t.Name)
	if b.HasTag(t.Name) {
		return
	}
	b.Tags = append(b.Tags, t)
}

func (b Bookmark) HasTag(name string) bool {
	name = NormalizeTagName(name)
	return slices.ContainsFunc(b.Tags, func(t Tag) bool { return t.Name == name })
}

// TagsString lists the tag names for display. Untagged bookmarks show nothing.
func (b Bookmark) TagsString() string {
	if b.HasTag(DefaultTag) {
		return ""
	}

	names := make([]string, 0, len(b.Tags))
	for _, t := range b.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func (b Bookmark) DateCreatedString() string {
	return b.DateCreated.Format(time.DateOnly)
}

// NormalizeTagName is the canonical form tags are stored and compared under.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTagNames normalizes and dedupes names, keeping first-seen order.
// Blank names are rejected.
func NormalizeTagNames(names ...string) ([]string, error) {
	var (
		seen = make(map[string]struct{}, len(names))
		out  = make([]string, 0, len(names))
	)
	for _, name := range names {
		n := NormalizeTagName(name)
		if n == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTag, name)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out, nil
}
