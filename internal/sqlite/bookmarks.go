package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/jdholdren/spdb/internal/spdb"
)

// Keeps IN (...) lists well under sqlite's bound parameter limit.
const deleteChunkSize = 500

var bookmarkColumns = []string{"id", "url", "title", "subreddit", "date_created"}

func (r Repo) BookmarkIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT id FROM bookmarks;`

	ids := []string{}
	if err := sqlx.SelectContext(ctx, r.ext(), &ids, q); err != nil {
		return nil, fmt.Errorf("error selecting bookmark ids: %w", err)
	}

	return ids, nil
}

func (r Repo) Bookmark(ctx context.Context, id string) (spdb.Bookmark, error) {
	query, args, err := sq.Select(bookmarkColumns...).From("bookmarks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return spdb.Bookmark{}, fmt.Errorf("error constructing sql: %w", err)
	}

	var bm spdb.Bookmark
	err = sqlx.GetContext(ctx, r.ext(), &bm, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return spdb.Bookmark{}, fmt.Errorf("bookmark %s: %w", id, spdb.ErrNotFound)
	}
	if err != nil {
		return spdb.Bookmark{}, fmt.Errorf("error fetching bookmark: %w", err)
	}

	tags, err := r.tagsFor(ctx, []string{id})
	if err != nil {
		return spdb.Bookmark{}, err
	}
	bm.Tags = tags[id]

	return bm, nil
}

// Bookmarks lists bookmarks newest first, each with its tags.
//
// An offset is only applied alongside a limit.
func (r Repo) Bookmarks(ctx context.Context, args spdb.BookmarksArgs) ([]spdb.Bookmark, error) {
	q := sq.Select(bookmarkColumns...).
		From("bookmarks").
		Where(bookmarkFilters(args)).
		OrderBy("date_created DESC", "id")
	if args.Limit > 0 {
		q = q.Limit(args.Limit).Offset(args.Offset)
	}

	query, qArgs, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	bms := []spdb.Bookmark{}
	if err := sqlx.SelectContext(ctx, r.ext(), &bms, query, qArgs...); err != nil {
		return nil, fmt.Errorf("error selecting bookmarks: %w", err)
	}

	ids := make([]string, 0, len(bms))
	for _, bm := range bms {
		ids = append(ids, bm.ID)
	}
	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bms {
		bms[i].Tags = tags[bms[i].ID]
	}

	return bms, nil
}

func (r Repo) CountBookmarks(ctx context.Context, args spdb.BookmarksArgs) (int, error) {
	query, qArgs, err := sq.Select("COUNT(*)").From("bookmarks").Where(bookmarkFilters(args)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error constructing sql: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.ext(), &count, query, qArgs...); err != nil {
		return 0, fmt.Errorf("error counting bookmarks: %w", err)
	}

	return count, nil
}

func bookmarkFilters(args spdb.BookmarksArgs) sq.And {
	where := sq.And{}
	if args.Subreddit != "" {
		where = append(where, sq.Eq{"subreddit": args.Subreddit})
	}
	if args.Tag != "" {
		where = append(where, sq.Expr(
			"id IN (SELECT bookmark_id FROM bookmark_tags WHERE tag_name = ?)",
			spdb.NormalizeTagName(args.Tag),
		))
	}

	return where
}

// AddBookmark inserts the bookmark and its tags, attaching the default tag first
// if it has none. The default tag is dropped when real tags are present. Inserting an id that's already stored fails with [spdb.ErrConflict]
// and leaves the stored bookmark alone.
func (r Repo) AddBookmark(ctx context.Context, bm *spdb.Bookmark) error {
	names := make([]string, 0, len(bm.Tags))
	for _, t := range bm.Tags {
		names = append(names, t.Name)
	}
	names, err := spdb.NormalizeTagNames(names...)
	if err != nil {
		return err
	}
	// Real tags replace the default one.
	if len(names) > 1 {
		names = slices.DeleteFunc(names, func(n string) bool { return n == spdb.DefaultTag })
	}
	if len(names) == 0 {
		names = []string{spdb.DefaultTag}
	}

	bm.Tags = make([]spdb.Tag, 0, len(names))
	for _, n := range names {
		bm.Tags = append(bm.Tags, spdb.Tag{Name: n})
	}

	return r.inTx(ctx, func(q sqlx.ExtContext) error {
		const insertQ = `INSERT INTO bookmarks (id, url, title, subreddit, date_created)
		VALUES (:id, :url, :title, :subreddit, :date_created);`
		_, err := sqlx.NamedExecContext(ctx, q, insertQ, bm)
		if isConstraintErr(err) {
			return fmt.Errorf("bookmark %s already exists: %w", bm.ID, spdb.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("error inserting bookmark: %w", err)
		}

		for _, name := range names {
			if err := ensureTag(ctx, q, name); err != nil {
				return err
			}
			if err := attachTag(ctx, q, bm.ID, name); err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteBookmarks removes the bookmarks along with their tag associations. The
// tags themselves are kept, even if nothing carries them anymore.
func (r Repo) DeleteBookmarks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return r.inTx(ctx, func(q sqlx.ExtContext) error {
		for chunk := range slices.Chunk(ids, deleteChunkSize) {
			for _, d := range []sq.DeleteBuilder{
				sq.Delete("bookmark_tags").Where(sq.Eq{"bookmark_id": chunk}),
				sq.Delete("bookmarks").Where(sq.Eq{"id": chunk}),
			} {
				query, args, err := d.ToSql()
				if err != nil {
					return fmt.Errorf("error constructing sql: %w", err)
				}
				if _, err := q.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("error deleting bookmarks: %w", err)
				}
			}
		}

		return nil
	})
}

func bookmarkExists(ctx context.Context, q sqlx.QueryerContext, id string) error {
	const query = `SELECT COUNT(*) FROM bookmarks WHERE id = ?;`

	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, id); err != nil {
		return fmt.Errorf("error checking bookmark: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("bookmark %s: %w", id, spdb.ErrNotFound)
	}

	return nil
}
