package viewer

import (
	"net/http"
	"time"

	spdberrs "github.com/jdholdren/spdb/internal/errors"
	"github.com/jdholdren/spdb/internal/server"
	"github.com/jdholdren/spdb/internal/spdb"
)

type (
	apiBookmark struct {
		ID          string    `json:"id"`
		URL         string    `json:"url"`
		Title       string    `json:"title"`
		Subreddit   string    `json:"subreddit"`
		DateCreated time.Time `json:"date_created"`
		Tags        []string  `json:"tags"`
	}

	apiTag struct {
		Name      string `json:"name"`
		Bookmarks int    `json:"bookmarks"`
	}

	bookmarksResponse struct {
		Bookmarks  []apiBookmark     `json:"bookmarks"`
		Pagination server.Pagination `json:"pagination"`
	}

	tagsResponse struct {
		Tags []apiTag `json:"tags"`
	}
)

func toAPIBookmark(bm spdb.Bookmark) apiBookmark {
	tags := make([]string, 0, len(bm.Tags))
	for _, t := range bm.Tags {
		tags = append(tags, t.Name)
	}

	return apiBookmark{
		ID:          bm.ID,
		URL:         bm.URL,
		Title:       bm.Title,
		Subreddit:   bm.Subreddit,
		DateCreated: bm.DateCreated,
		Tags:        tags,
	}
}

func (s Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) error {
	bms, page, err := s.listBookmarks(r, listArgs(r))
	if err != nil {
		return err
	}

	resp := bookmarksResponse{
		Bookmarks:  make([]apiBookmark, 0, len(bms)),
		Pagination: page,
	}
	for _, bm := range bms {
		resp.Bookmarks = append(resp.Bookmarks, toAPIBookmark(bm))
	}

	return server.WriteJSON(w, http.StatusOK, resp)
}

func (s Server) handleListTags(w http.ResponseWriter, r *http.Request) error {
	tags, err := s.repo.Tags(r.Context())
	if err != nil {
		return err
	}

	resp := tagsResponse{Tags: make([]apiTag, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, apiTag{Name: t.Name, Bookmarks: t.Bookmarks})
	}

	return server.WriteJSON(w, http.StatusOK, resp)
}

func (s Server) handleAPISync(w http.ResponseWriter, r *http.Request) error {
	res, ok, err := s.trySync(r.Context())
	if !ok {
		return spdberrs.E(http.StatusConflict, "a sync is already running")
	}
	if err != nil {
		return err
	}

	return server.WriteJSON(w, http.StatusOK, res)
}
