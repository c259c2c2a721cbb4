package viewer

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"go.uber.org/fx"

	"github.com/jdholdren/spdb/internal/server"
	"github.com/jdholdren/spdb/internal/spdb"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

//go:embed templates/*.html
var templates embed.FS

type (
	// Syncer runs a reconciliation pass against reddit.
	Syncer interface {
		Sync(ctx context.Context) (spdb.SyncResult, error)
	}

	// Server is the bookmark viewer.
	Server struct {
		*http.Server

		repo   spdb.Repository
		syncer Syncer

		// Held for the duration of a sync, so only one runs at a time.
		syncing *sync.Mutex

		secureCookie *securecookie.SecureCookie
		httpsCookies bool
		index        *template.Template
	}

	ServerConfig struct {
		Port           int
		CookieHashKey  []byte
		CookieBlockKey []byte
		HttpsCookies   bool
	}

	Params struct {
		fx.In

		Config ServerConfig
		Repo   spdb.Repository
		Syncer Syncer
	}
)

func NewServer(lc fx.Lifecycle, p Params) Server {
	srvr := newServer(p.Config, p.Repo, p.Syncer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srvr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("viewer server stopped", "error", err)
				}
			}()

			slog.Info("started viewer server", "port", p.Config.Port)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srvr.Shutdown(ctx)
		},
	})

	return srvr
}

func newServer(cfg ServerConfig, repo spdb.Repository, syncer Syncer) Server {
	r := mux.NewRouter()
	srvr := Server{
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			ReadTimeout: 5 * time.Second,
			// Syncs walk every page of the saved listing before responding.
			WriteTimeout: 5 * time.Minute,
			Handler: handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(
				handlers.HTTPMethodOverrideHandler(r),
			),
		},
		repo:         repo,
		syncer:       syncer,
		syncing:      &sync.Mutex{},
		secureCookie: securecookie.New(cfg.CookieHashKey, cfg.CookieBlockKey),
		httpsCookies: cfg.HttpsCookies,
		index: template.Must(template.New("index.html").
			Funcs(template.FuncMap{"pathEscape": url.PathEscape}).
			ParseFS(templates, "templates/index.html")),
	}

	er := server.ErrRouter{Router: r}
	er.Use(server.AccessLogMiddleware)
	er.HandleFuncE("/", srvr.handleIndex).Methods(http.MethodGet)
	er.HandleFuncE("/sync", srvr.handleSync).Methods(http.MethodPost)
	er.HandleFuncE("/bookmarks/{id}/tags", srvr.handleApplyTag).Methods(http.MethodPost)
	er.HandleFuncE("/bookmarks/{id}/tags/{tag}", srvr.handleRemoveTag).Methods(http.MethodDelete)

	api := server.ErrRouter{Router: r.PathPrefix("/api").Subrouter()}
	api.HandleFuncE("/bookmarks", srvr.handleListBookmarks).Methods(http.MethodGet)
	api.HandleFuncE("/tags", srvr.handleListTags).Methods(http.MethodGet)
	api.HandleFuncE("/sync", srvr.handleAPISync).Methods(http.MethodPost)

	return srvr
}

// Runs a sync unless one is already in flight, in which case ok is false.
//
// The sync is detached from the request's cancellation so a client hanging up
// doesn't abandon a pass halfway through the listing.
func (s Server) trySync(ctx context.Context) (res spdb.SyncResult, ok bool, err error) {
	if !s.syncing.TryLock() {
		return spdb.SyncResult{}, false, nil
	}
	defer s.syncing.Unlock()

	res, err = s.syncer.Sync(context.WithoutCancel(ctx))
	return res, true, err
}

type recoveryLogger struct{}

func (recoveryLogger) Println(args ...any) {
	slog.Error("recovered from panic", "panic", fmt.Sprint(args...))
}
