package spdb

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSavedItem_Post(t *testing.T) {
	post := Post{
		ID:         "1k11kdy",
		Title:      "Go 1.25 is released",
		Permalink:  "/r/golang/comments/1k11kdy/go_125_is_released/",
		Subreddit:  "golang",
		CreatedUTC: 1744800000,
	}

	bm, err := FromSavedItem(post)
	require.NoError(t, err)

	assert.Equal(t, "1k11kdy", bm.ID)
	assert.Equal(t, "Go 1.25 is released", bm.Title)
	assert.Equal(t, RedditURL+post.Permalink, bm.URL)
	assert.Equal(t, "golang", bm.Subreddit)
	assert.Equal(t, time.Unix(1744800000, 0).UTC(), bm.DateCreated)
	assert.Empty(t, bm.Tags)
}

func TestFromSavedItem_Comment(t *testing.T) {
	comment := Comment{
		ID:                  "mnilzco",
		Author:              "gopher",
		Body:                strings.Repeat("abcdefghij", 5),
		SubmissionPermalink: "/r/golang/comments/1k11kdy/go_125_is_released/",
		Subreddit:           "golang",
		CreatedUTC:          1744800000.5,
	}

	bm, err := FromSavedItem(comment)
	require.NoError(t, err)

	assert.Equal(t, "mnilzco", bm.ID)
	assert.Equal(t, "gopher: "+strings.Repeat("abcdefghij", 4), bm.Title)
	assert.Equal(t, RedditURL+comment.SubmissionPermalink+"/mnilzco", bm.URL)
	assert.Equal(t, time.Unix(1744800000, 500_000_000).UTC(), bm.DateCreated)
}

func TestFromSavedItem_CommentTitleCountsRunes(t *testing.T) {
	comment := Comment{ID: "c1", Author: "a", Body: strings.Repeat("é", 50)}

	bm, err := FromSavedItem(comment)
	require.NoError(t, err)
	assert.Equal(t, "a: "+strings.Repeat("é", 40), bm.Title)

	comment.Body = "short"
	bm, err = FromSavedItem(comment)
	require.NoError(t, err)
	assert.Equal(t, "a: short", bm.Title)
}

type notAnItem struct{ Post }

func TestFromSavedItem_Unknown(t *testing.T) {
	_, err := FromSavedItem(nil)
	require.ErrorIs(t, err, ErrUnknownItem)

	_, err = FromSavedItem(notAnItem{})
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestNewBookmark_DateCreated(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		created any
	}{
		{name: "float epoch", created: float64(want.Unix())},
		{name: "int epoch", created: int(want.Unix())},
		{name: "int64 epoch", created: want.Unix()},
		{name: "json number", created: json.Number("1704164645")},
		{name: "time", created: want},
		{name: "time elsewhere", created: want.In(time.FixedZone("somewhere", 3600))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm, err := NewBookmark(NewBookmarkArgs{ID: "1", DateCreated: tt.created})
			require.NoError(t, err)
			assert.Equal(t, want, bm.DateCreated)
		})
	}
}

func TestNewBookmark_InvalidDateCreated(t *testing.T) {
	for _, created := range []any{nil, "2024-01-02", json.Number("soon"), []byte("1")} {
		_, err := NewBookmark(NewBookmarkArgs{ID: "1", DateCreated: created})
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	}
}

func TestBookmark_ApplyTag(t *testing.T) {
	bm, err := NewBookmark(NewBookmarkArgs{
		ID:          "1",
		DateCreated: time.Now(),
		Tags:        []Tag{{Name: "Go"}, {Name: "go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Name: "go"}}, bm.Tags)

	bm.ApplyTag(Tag{Name: "reading"})
	bm.ApplyTag(Tag{Name: " READING "})
	assert.Equal(t, []Tag{{Name: "go"}, {Name: "reading"}}, bm.Tags)
	assert.True(t, bm.HasTag("Reading"))
	assert.Equal(t, "go, reading", bm.TagsString())
}

func TestBookmark_Display(t *testing.T) {
	bm := Bookmark{
		DateCreated: time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC),
		Tags:        []Tag{{Name: DefaultTag}},
	}

	assert.Equal(t, "", bm.TagsString())
	assert.Equal(t, "2024-03-09", bm.DateCreatedString())
}

func TestNormalizeTagNames(t *testing.T) {
	got, err := NormalizeTagNames("Foo", "foo", " BAR ")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, got)

	_, err = NormalizeTagNames("ok", "")
	assert.ErrorIs(t, err, ErrInvalidTag)
}
