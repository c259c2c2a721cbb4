package spdb

import (
	"fmt"
)

// commentTitleLen is how much of a comment body ends up in its bookmark title.
const commentTitleLen = 40

type (
	// SavedItem is one of the things a user can save on reddit: a [Post] or a [Comment].
	SavedItem interface {
		ItemID() string
		savedItem()
	}

	Post struct {
		ID         string
		Title      string
		Permalink  string // Site relative, e.g. /r/golang/comments/abc123/some_title/
		Subreddit  string
		CreatedUTC float64
	}

	Comment struct {
		ID                  string
		Author              string
		Body                string
		SubmissionPermalink string // Permalink of the post the comment was made on
		Subreddit           string
		CreatedUTC          float64
	}
)

func (p Post) ItemID() string    { return p.ID }
func (Post) savedItem()          {}
func (c Comment) ItemID() string { return c.ID }
func (Comment) savedItem()       {}

// FromSavedItem converts a saved item into a bookmark that has not been persisted.
func FromSavedItem(item SavedItem) (Bookmark, error) {
	var args NewBookmarkArgs
	switch item := item.(type) {
	case Post:
		args = NewBookmarkArgs{
			ID:          item.ID,
			Title:       item.Title,
			URL:         RedditURL + item.Permalink,
			Subreddit:   item.Subreddit,
			DateCreated: item.CreatedUTC,
		}
	case Comment:
		args = NewBookmarkArgs{
			ID:          item.ID,
			Title:       fmt.Sprintf("%s: %s", item.Author, truncate(item.Body, commentTitleLen)),
			URL:         fmt.Sprintf("%s%s/%s", RedditURL, item.SubmissionPermalink, item.ID),
			Subreddit:   item.Subreddit,
			DateCreated: item.CreatedUTC,
		}
	default:
		return Bookmark{}, fmt.Errorf("%w: %T", ErrUnknownItem, item)
	}

	return NewBookmark(args)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
