package spdb_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/spdb/internal/spdb"
	"github.com/jdholdren/spdb/internal/sqlite"
)

var errBoom = errors.New("boom")

// Yields its items, then err if set.
type fakeSource struct {
	items []spdb.SavedItem
	err   error
	calls int
}

func (f *fakeSource) SavedItems(ctx context.Context) iter.Seq2[spdb.SavedItem, error] {
	f.calls++
	return func(yield func(spdb.SavedItem, error) bool) {
		for _, item := range f.items {
			if !yield(item, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func posts(ids ...string) []spdb.SavedItem {
	items := []spdb.SavedItem{}
	for _, id := range ids {
		items = append(items, spdb.Post{
			ID:         id,
			Title:      "post " + id,
			Permalink:  "/r/test/comments/" + id + "/post/",
			Subreddit:  "test",
			CreatedUTC: 1700000000,
		})
	}
	return items
}

func newTestRepo(t *testing.T) sqlite.Repo {
	t.Helper()

	dbx, err := sqlite.Open(sqlite.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	return sqlite.New(dbx)
}

// Seeds the repo by syncing the given ids in.
func seed(t *testing.T, repo spdb.Repository, ids ...string) {
	t.Helper()

	_, err := spdb.NewSyncer(&fakeSource{items: posts(ids...)}, repo).Sync(context.Background())
	require.NoError(t, err)
}

func localIDs(t *testing.T, repo spdb.Repository) []string {
	t.Helper()

	ids, err := repo.BookmarkIDs(context.Background())
	require.NoError(t, err)
	return ids
}

func TestSync_Scenario(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	seed(t, repo, "001", "002", "003")
	require.NoError(t, repo.ApplyTag(ctx, "002", "keep"))

	res, err := spdb.NewSyncer(&fakeSource{items: posts("002", "003", "004")}, repo).Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"004"}, res.Inserted)
	assert.Equal(t, []string{"001"}, res.Deleted)
	assert.ElementsMatch(t, []string{"002", "003", "004"}, localIDs(t, repo))

	inserted, err := repo.Bookmark(ctx, "004")
	require.NoError(t, err)
	assert.Equal(t, []spdb.Tag{{Name: spdb.DefaultTag}}, inserted.Tags)
	assert.Equal(t, spdb.RedditURL+"/r/test/comments/004/post/", inserted.URL)

	kept, err := repo.Bookmark(ctx, "002")
	require.NoError(t, err)
	assert.Equal(t, []spdb.Tag{{Name: "keep"}}, kept.Tags)

	untouched, err := repo.Bookmark(ctx, "003")
	require.NoError(t, err)
	assert.Equal(t, []spdb.Tag{{Name: spdb.DefaultTag}}, untouched.Tags)
}

func TestSync_Idempotent(t *testing.T) {
	var (
		ctx    = context.Background()
		repo   = newTestRepo(t)
		source = &fakeSource{items: posts("a", "b", "c")}
		syncer = spdb.NewSyncer(source, repo)
	)

	_, err := syncer.Sync(ctx)
	require.NoError(t, err)
	first := localIDs(t, repo)

	res, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Inserted)
	assert.Empty(t, res.Deleted)
	assert.ElementsMatch(t, first, localIDs(t, repo))
	assert.Equal(t, 2, source.calls)
}

func TestSync_Mirrors(t *testing.T) {
	tests := []struct {
		name   string
		local  []string
		remote []spdb.SavedItem
		want   []string
	}{
		{name: "empty both"},
		{name: "empty local", remote: posts("a", "b"), want: []string{"a", "b"}},
		{name: "empty remote", local: []string{"a", "b"}},
		{name: "disjoint", local: []string{"a"}, remote: posts("b"), want: []string{"b"}},
		{name: "duplicate remote ids", remote: posts("a", "a", "b"), want: []string{"a", "b"}},
		{
			name:  "mixed kinds",
			local: []string{"old"},
			remote: append(posts("p1"), spdb.Comment{
				ID:                  "c1",
				Author:              "gopher",
				Body:                "nice",
				SubmissionPermalink: "/r/test/comments/p1/post",
				Subreddit:           "test",
				CreatedUTC:          1700000000,
			}),
			want: []string{"p1", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			seed(t, repo, tt.local...)

			_, err := spdb.NewSyncer(&fakeSource{items: tt.remote}, repo).Sync(context.Background())
			require.NoError(t, err)

			assert.ElementsMatch(t, tt.want, localIDs(t, repo))
		})
	}
}

func TestSync_FetchErrorLeavesStoreAlone(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	seed(t, repo, "001", "002")

	source := &fakeSource{items: posts("003"), err: errBoom}
	_, err := spdb.NewSyncer(source, repo).Sync(ctx)
	require.ErrorIs(t, err, errBoom)

	assert.ElementsMatch(t, []string{"001", "002"}, localIDs(t, repo))
}

func TestSync_NilItem(t *testing.T) {
	repo := newTestRepo(t)

	_, err := spdb.NewSyncer(&fakeSource{items: []spdb.SavedItem{nil}}, repo).Sync(context.Background())
	require.ErrorIs(t, err, spdb.ErrUnknownItem)
}

// Fails inserting one particular bookmark.
type failingRepo struct {
	spdb.Repository
	failID string
}

func (f failingRepo) AddBookmark(ctx context.Context, bm *spdb.Bookmark) error {
	if bm.ID == f.failID {
		return errBoom
	}
	return f.Repository.AddBookmark(ctx, bm)
}

func (f failingRepo) Atomically(ctx context.Context, fn func(spdb.Repository) error) error {
	return f.Repository.Atomically(ctx, func(tx spdb.Repository) error {
		return fn(failingRepo{Repository: tx, failID: f.failID})
	})
}

func TestSync_InsertErrorRollsBack(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)
	seed(t, repo, "001")

	_, err := spdb.NewSyncer(
		&fakeSource{items: posts("002", "003", "004")},
		failingRepo{Repository: repo, failID: "003"},
	).Sync(ctx)
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, []string{"001"}, localIDs(t, repo))
}
