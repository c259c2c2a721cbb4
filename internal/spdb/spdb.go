// Package spdb holds the domain of the saved-posts database: bookmarks mirrored from
// a user's saved reddit items, the tags applied to them, and the reconciliation pass
// that keeps the local store in step with reddit.
package spdb

import (
	"context"
	"errors"
)

const (
	// DefaultTag is attached to any bookmark persisted without tags.
	DefaultTag = "_untagged"

	// RedditURL prefixes every permalink to build a bookmark's url.
	RedditURL = "https://www.reddit.com"
)

var (
	ErrConflict         = errors.New("resource already exists")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidTag       = errors.New("invalid tag name")
	ErrUnknownItem      = errors.New("unknown saved item")
)

type (
	Repository interface {
		// BookmarkIDs returns the id of every stored bookmark.
		BookmarkIDs(ctx context.Context) ([]string, error)
		Bookmark(ctx context.Context, id string) (Bookmark, error)
		Bookmarks(ctx context.Context, args BookmarksArgs) ([]Bookmark, error)
		CountBookmarks(ctx context.Context, args BookmarksArgs) (int, error)
		// AddBookmark persists a new bookmark, attaching the default tag when it has none.
		AddBookmark(ctx context.Context, bm *Bookmark) error
		DeleteBookmarks(ctx context.Context, ids []string) error

		// Tag looks up a tag by name, creating it when absent.
		Tag(ctx context.Context, name string) (Tag, error)
		Tags(ctx context.Context) ([]TagCount, error)
		CreateTags(ctx context.Context, names ...string) error
		ApplyTag(ctx context.Context, bookmarkID, name string) error
		RemoveTag(ctx context.Context, bookmarkID, name string) error

		// Atomically runs fn against a repository bound to a single transaction.
		// Nothing fn writes is visible until fn returns nil.
		Atomically(ctx context.Context, fn func(Repository) error) error
	}

	// Optional filters and paging for listing bookmarks.
	BookmarksArgs struct {
		Tag       string
		Subreddit string
		Limit     uint64
		Offset    uint64
	}
)
