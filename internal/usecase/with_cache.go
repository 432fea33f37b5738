package usecase

import (
	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

// WithCache loads the cache, runs fn and persists the cache on every exit path,
// fn errors and panics included. A corrupt cache file is passed to onCorrupt and
// the run continues with an empty cache.
func WithCache(cache ports.LineageCache, onCorrupt func(error), fn func() error) (err error) {
	if lerr := cache.Load(); lerr != nil {
		if !domain.IsKind(lerr, domain.KindCacheCorruption) {
			return lerr
		}
		if onCorrupt != nil {
			onCorrupt(lerr)
		}
	}

	defer func() {
		if perr := cache.Persist(); perr != nil && err == nil {
			err = perr
		}
	}()

	return fn()
}
