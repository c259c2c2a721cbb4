package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	spdberrs "github.com/jdholdren/spdb/internal/errors"
	"github.com/jdholdren/spdb/internal/server"
	"github.com/jdholdren/spdb/internal/spdb"
)

var validate = validator.New()

type indexPage struct {
	Flash      string
	Bookmarks  []spdb.Bookmark
	Tags       []spdb.TagCount
	Tag        string
	Subreddit  string
	DefaultTag string
	Pagination server.Pagination
	PrevURL    string
	NextURL    string
}

// Reads the filters and paging shared by the html and json listings.
func listArgs(r *http.Request) spdb.BookmarksArgs {
	limit, offset := server.ParsePagination(r, defaultPageSize, maxPageSize)
	return spdb.BookmarksArgs{
		Tag:       r.URL.Query().Get("tag"),
		Subreddit: r.URL.Query().Get("subreddit"),
		Limit:     uint64(limit),
		Offset:    uint64(offset),
	}
}

func (s Server) listBookmarks(r *http.Request, args spdb.BookmarksArgs) ([]spdb.Bookmark, server.Pagination, error) {
	bms, err := s.repo.Bookmarks(r.Context(), args)
	if err != nil {
		return nil, server.Pagination{}, err
	}
	total, err := s.repo.CountBookmarks(r.Context(), args)
	if err != nil {
		return nil, server.Pagination{}, err
	}

	return bms, server.Pagination{Limit: int(args.Limit), Offset: int(args.Offset), Total: total}, nil
}

func (s Server) handleIndex(w http.ResponseWriter, r *http.Request) error {
	args := listArgs(r)
	bms, page, err := s.listBookmarks(r, args)
	if err != nil {
		return err
	}
	tags, err := s.repo.Tags(r.Context())
	if err != nil {
		return err
	}

	data := indexPage{
		Flash:      s.popFlash(w, r),
		Bookmarks:  bms,
		Tags:       tags,
		Tag:        args.Tag,
		Subreddit:  args.Subreddit,
		DefaultTag: spdb.DefaultTag,
		Pagination: page,
	}
	if page.Offset > 0 {
		data.PrevURL = pageURL(args, max(page.Offset-page.Limit, 0))
	}
	if page.Offset+page.Limit < page.Total {
		data.NextURL = pageURL(args, page.Offset+page.Limit)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		return fmt.Errorf("error rendering index: %w", err)
	}
	return nil
}

func pageURL(args spdb.BookmarksArgs, offset int) string {
	v := url.Values{}
	if args.Tag != "" {
		v.Set("tag", args.Tag)
	}
	if args.Subreddit != "" {
		v.Set("subreddit", args.Subreddit)
	}
	v.Set("limit", strconv.FormatUint(args.Limit, 10))
	v.Set("offset", strconv.Itoa(offset))
	return "/?" + v.Encode()
}

func (s Server) handleSync(w http.ResponseWriter, r *http.Request) error {
	res, ok, err := s.trySync(r.Context())
	switch {
	case !ok:
		s.setFlash(w, "A sync is already running")
	case err != nil:
		slog.ErrorContext(r.Context(), "error syncing", "error", err)
		s.setFlash(w, "Sync failed: "+err.Error())
	default:
		slog.InfoContext(r.Context(), "synced from viewer", "inserted", len(res.Inserted), "deleted", len(res.Deleted))
		s.setFlash(w, "Database synced successfully!")
	}

	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

type tagForm struct {
	// Slashes would make the tag unroutable when removing it.
	Tag string `validate:"required,max=64,excludesall=/"`
}

func (s Server) handleApplyTag(w http.ResponseWriter, r *http.Request) error {
	form := tagForm{Tag: spdb.NormalizeTagName(r.FormValue("tag"))}

	err := validate.Struct(form)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		s.setFlash(w, fmt.Sprintf("Invalid tag %q", r.FormValue("tag")))
		redirectBack(w, r)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.repo.ApplyTag(r.Context(), mux.Vars(r)["id"], form.Tag); err != nil {
		return s.flashOrFail(w, r, "Couldn't tag bookmark", err)
	}

	redirectBack(w, r)
	return nil
}

func (s Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	if err := s.repo.RemoveTag(r.Context(), vars["id"], vars["tag"]); err != nil {
		return s.flashOrFail(w, r, "Couldn't untag bookmark", err)
	}

	redirectBack(w, r)
	return nil
}

// Client errors are shown on the page they came from; anything else fails the request.
func (s Server) flashOrFail(w http.ResponseWriter, r *http.Request, prefix string, err error) error {
	sErr := spdberrs.FromDomain(err)
	if sErr.Status >= http.StatusInternalServerError {
		return err
	}

	s.setFlash(w, fmt.Sprintf("%s: %s", prefix, sErr.Err))
	redirectBack(w, r)
	return nil
}

// Sends the browser to the page it came from, as long as that was this site.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && ref.Path != "" {
		target = ref.RequestURI()
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}
