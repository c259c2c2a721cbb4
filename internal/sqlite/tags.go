package sqlite

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/jdholdren/spdb/internal/spdb"
)

// Tag resolves a tag by its normalized name, creating it when it doesn't exist yet.
func (r Repo) Tag(ctx context.Context, name string) (spdb.Tag, error) {
	names, err := spdb.NormalizeTagNames(name)
	if err != nil {
		return spdb.Tag{}, err
	}

	if err := r.inTx(ctx, func(q sqlx.ExtContext) error {
		return ensureTag(ctx, q, names[0])
	}); err != nil {
		return spdb.Tag{}, err
	}

	return spdb.Tag{Name: names[0]}, nil
}

// Tags lists every tag, including orphans, with the number of bookmarks carrying it.
func (r Repo) Tags(ctx context.Context) ([]spdb.TagCount, error) {
	const q = `
	SELECT
		t.name AS name,
		COUNT(bt.bookmark_id) AS bookmarks
	FROM
		tags t
		LEFT JOIN bookmark_tags bt ON bt.tag_name = t.name
	GROUP BY t.name
	ORDER BY t.name;
	`

	tags := []spdb.TagCount{}
	if err := sqlx.SelectContext(ctx, r.ext(), &tags, q); err != nil {
		return nil, fmt.Errorf("error selecting tags: %w", err)
	}

	return tags, nil
}

// CreateTags creates whichever of names don't exist yet, in one batch. Names are
// compared case-insensitively, so "Foo" and "foo" make a single tag.
func (r Repo) CreateTags(ctx context.Context, names ...string) error {
	names, err := spdb.NormalizeTagNames(names...)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	return r.inTx(ctx, func(q sqlx.ExtContext) error {
		query, args, err := sq.Select("name").From("tags").Where(sq.Eq{"name": names}).ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		var existing []string
		if err := sqlx.SelectContext(ctx, q, &existing, query, args...); err != nil {
			return fmt.Errorf("error selecting existing tags: %w", err)
		}

		missing := []spdb.Tag{}
		for _, name := range names {
			if !slices.Contains(existing, name) {
				missing = append(missing, spdb.Tag{Name: name})
			}
		}
		if len(missing) == 0 {
			return nil
		}

		const insertQ = `INSERT INTO tags (name) VALUES (:name);`
		if _, err := sqlx.NamedExecContext(ctx, q, insertQ, missing); err != nil {
			return fmt.Errorf("error inserting tags: %w", err)
		}

		return nil
	})
}

// ApplyTag attaches the named tag to a stored bookmark, creating the tag if needed.
// A real tag replaces the default one.
func (r Repo) ApplyTag(ctx context.Context, bookmarkID, name string) error {
	names, err := spdb.NormalizeTagNames(name)
	if err != nil {
		return err
	}
	name = names[0]

	return r.inTx(ctx, func(q sqlx.ExtContext) error {
		if err := bookmarkExists(ctx, q, bookmarkID); err != nil {
			return err
		}
		if err := ensureTag(ctx, q, name); err != nil {
			return err
		}
		if err := attachTag(ctx, q, bookmarkID, name); err != nil {
			return err
		}
		if name == spdb.DefaultTag {
			return nil
		}

		_, err := detachTag(ctx, q, bookmarkID, spdb.DefaultTag)
		return err
	})
}

// RemoveTag detaches the named tag from a stored bookmark, failing with
// [spdb.ErrNotFound] if the bookmark doesn't carry it. A bookmark left without
// tags gets the default one back.
func (r Repo) RemoveTag(ctx context.Context, bookmarkID, name string) error {
	names, err := spdb.NormalizeTagNames(name)
	if err != nil {
		return err
	}
	name = names[0]

	return r.inTx(ctx, func(q sqlx.ExtContext) error {
		if err := bookmarkExists(ctx, q, bookmarkID); err != nil {
			return err
		}
		n, err := detachTag(ctx, q, bookmarkID, name)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("bookmark %s has no tag %s: %w", bookmarkID, name, spdb.ErrNotFound)
		}

		const countQ = `SELECT COUNT(*) FROM bookmark_tags WHERE bookmark_id = ?;`
		var remaining int
		if err := sqlx.GetContext(ctx, q, &remaining, countQ, bookmarkID); err != nil {
			return fmt.Errorf("error counting tags: %w", err)
		}
		if remaining > 0 {
			return nil
		}

		if err := ensureTag(ctx, q, spdb.DefaultTag); err != nil {
			return err
		}
		return attachTag(ctx, q, bookmarkID, spdb.DefaultTag)
	})
}

// Fetches the tags of each bookmark, keyed by bookmark id.
func (r Repo) tagsFor(ctx context.Context, bookmarkIDs []string) (map[string][]spdb.Tag, error) {
	tags := make(map[string][]spdb.Tag, len(bookmarkIDs))
	if len(bookmarkIDs) == 0 {
		return tags, nil
	}

	query, args, err := sq.Select("bookmark_id", "tag_name").
		From("bookmark_tags").
		Where(sq.Eq{"bookmark_id": bookmarkIDs}).
		OrderBy("tag_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	var rows []struct {
		BookmarkID string `db:"bookmark_id"`
		TagName    string `db:"tag_name"`
	}
	if err := sqlx.SelectContext(ctx, r.ext(), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting bookmark tags: %w", err)
	}
	for _, row := range rows {
		tags[row.BookmarkID] = append(tags[row.BookmarkID], spdb.Tag{Name: row.TagName})
	}

	return tags, nil
}

func ensureTag(ctx context.Context, q sqlx.ExecerContext, name string) error {
	const query = `INSERT INTO tags (name) VALUES (?) ON CONFLICT (name) DO NOTHING;`
	if _, err := q.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("error ensuring tag %q: %w", name, err)
	}

	return nil
}

func attachTag(ctx context.Context, q sqlx.ExecerContext, bookmarkID, name string) error {
	const query = `INSERT INTO bookmark_tags (bookmark_id, tag_name) VALUES (?, ?)
	ON CONFLICT (bookmark_id, tag_name) DO NOTHING;`
	if _, err := q.ExecContext(ctx, query, bookmarkID, name); err != nil {
		return fmt.Errorf("error tagging bookmark: %w", err)
	}

	return nil
}

// Reports how many associations were removed: 0 or 1.
func detachTag(ctx context.Context, q sqlx.ExecerContext, bookmarkID, name string) (int64, error) {
	const query = `DELETE FROM bookmark_tags WHERE bookmark_id = ? AND tag_name = ?;`
	res, err := q.ExecContext(ctx, query, bookmarkID, name)
	if err != nil {
		return 0, fmt.Errorf("error untagging bookmark: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error untagging bookmark: %w", err)
	}
	return n, nil
}
