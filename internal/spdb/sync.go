package spdb

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jdholdren/spdb/internal/logger"
)

type (
	// SavedItemSource produces the user's saved items. The sequence can only be
	// ranged over once.
	SavedItemSource interface {
		SavedItems(ctx context.Context) iter.Seq2[SavedItem, error]
	}

	// Syncer mirrors the saved items of a source into a repository.
	Syncer struct {
		source SavedItemSource
		repo   Repository
	}

	// SyncResult lists the bookmark ids a pass inserted and deleted.
	SyncResult struct {
		Inserted []string `json:"inserted"`
		Deleted  []string `json:"deleted"`
	}
)

func NewSyncer(source SavedItemSource, repo Repository) Syncer {
	return Syncer{source: source, repo: repo}
}

// Sync makes the stored bookmarks match the source's saved items exactly.
//
// Items the store hasn't seen are inserted with the default tag, bookmarks that
// are no longer saved are deleted, and everything else is left alone, tags included.
// The pass is applied in a single transaction: on any error nothing is changed.
func (s Syncer) Sync(ctx context.Context) (SyncResult, error) {
	ctx = logger.Ctx(ctx, slog.String("sync_id", uuid.NewString()))
	start := time.Now()

	items, err := s.fetch(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	slog.InfoContext(ctx, "fetched saved items", "count", len(items))

	var res SyncResult
	if err := s.repo.Atomically(ctx, func(repo Repository) error {
		res, err = reconcile(ctx, repo, items)
		return err
	}); err != nil {
		return SyncResult{}, fmt.Errorf("error syncing bookmarks: %w", err)
	}

	slog.InfoContext(ctx, "synced bookmarks",
		"inserted", len(res.Inserted),
		"deleted", len(res.Deleted),
		"duration", time.Since(start),
	)

	return res, nil
}

// Reads the whole source up front, keeping the first occurrence of each id.
func (s Syncer) fetch(ctx context.Context) ([]SavedItem, error) {
	var (
		items = []SavedItem{}
		seen  = make(map[string]struct{})
	)
	for item, err := range s.source.SavedItems(ctx) {
		if err != nil {
			return nil, fmt.Errorf("error fetching saved items: %w", err)
		}
		if item == nil {
			return nil, fmt.Errorf("error fetching saved items: %w", ErrUnknownItem)
		}
		if _, ok := seen[item.ItemID()]; ok {
			continue
		}

		seen[item.ItemID()] = struct{}{}
		items = append(items, item)
	}

	return items, nil
}

func reconcile(ctx context.Context, repo Repository, items []SavedItem) (SyncResult, error) {
	localIDs, err := repo.BookmarkIDs(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	local := make(map[string]struct{}, len(localIDs))
	for _, id := range localIDs {
		local[id] = struct{}{}
	}

	res := SyncResult{Inserted: []string{}, Deleted: []string{}}
	remote := make(map[string]struct{}, len(items))
	for _, item := range items {
		remote[item.ItemID()] = struct{}{}
		if _, ok := local[item.ItemID()]; ok {
			continue
		}

		bm, err := FromSavedItem(item)
		if err != nil {
			return SyncResult{}, err
		}
		if err := repo.AddBookmark(ctx, &bm); err != nil {
			return SyncResult{}, fmt.Errorf("error adding bookmark %s: %w", bm.ID, err)
		}
		res.Inserted = append(res.Inserted, bm.ID)
	}

	for _, id := range localIDs {
		if _, ok := remote[id]; !ok {
			res.Deleted = append(res.Deleted, id)
		}
	}
	slices.Sort(res.Deleted)
	if err := repo.DeleteBookmarks(ctx, res.Deleted); err != nil {
		return SyncResult{}, err
	}

	return res, nil
}
