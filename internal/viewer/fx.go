// Package viewer serves the saved bookmarks over HTTP: an HTML page for browsing
// and tagging them, a small JSON API, and endpoints that trigger a sync.
package viewer

import (
	"go.uber.org/fx"
)

var Module = fx.Module("viewer",
	fx.Provide(
		NewServer,
	),
)
