package tolerance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"contourqa/internal/failure"
	"contourqa/internal/logging"
)

// Store persists tolerance settings. Save must apply both the threshold and
// the colour of one category atomically.
type Store interface {
	LoadTolerances(ctx context.Context) (map[Category]Setting, error)
	SaveTolerance(ctx context.Context, actor string, category Category, previous, next Setting) error
}

// Registry publishes the active profile. The zero value is not usable; create
// one with NewRegistry.
type Registry struct {
	current atomic.Pointer[Profile]
	version atomic.Uint64

	saveMu sync.Mutex
	store  Store
	logger *slog.Logger
}

// NewRegistry creates a registry seeded with defaults. store may be nil, in
// which case saves are applied in memory only.
func NewRegistry(defaults map[Category]Setting, store Store, logger *slog.Logger) *Registry {
	r := &Registry{store: store, logger: logging.NewComponentLogger(logger, "tolerance")}
	r.publish(NewProfile(defaults))
	return r
}

// Load overlays persisted settings on the defaults and publishes the result.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	persisted, err := r.store.LoadTolerances(ctx)
	if err != nil {
		return failure.Wrap(failure.ErrPersistence, "tolerance", "load", "", err)
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	next := NewProfile(r.Profile().Settings())
	for c, s := range persisted {
		if err := s.Validate(); err != nil {
			r.logger.Warn("ignoring persisted tolerance",
				logging.String("category", string(c)),
				logging.Error(err),
			)
			continue
		}
		if s.Color == "" {
			s.Color = next.Get(c).Color
		}
		next = next.with(c, s)
	}
	r.publish(next)
	r.logger.Debug("tolerance profile loaded", logging.Int("persisted", len(persisted)))
	return nil
}

// Profile returns the active snapshot.
func (r *Registry) Profile() *Profile {
	return r.current.Load()
}

// Version increases every time a new profile is published. It equals
// Profile().Version().
func (r *Registry) Version() uint64 {
	return r.Profile().Version()
}

// Save validates and persists a whole category, then publishes the new profile.
// Nothing is published when validation or persistence fails.
func (r *Registry) Save(ctx context.Context, actor string, category Category, setting Setting) error {
	if _, ok := ParseCategory(string(category)); !ok {
		return failure.Wrap(failure.ErrValidation, "tolerance", "save", fmt.Sprintf("unknown category %q", category), nil)
	}
	if err := setting.Validate(); err != nil {
		return err
	}

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	current := r.Profile()
	previous := current.Get(category)
	if r.store != nil {
		if err := r.store.SaveTolerance(ctx, actor, category, previous, setting); err != nil {
			return failure.Wrap(failure.ErrPersistence, "tolerance", "save", string(category), err)
		}
	}
	r.publish(current.with(category, setting))
	r.logger.Info("tolerance saved",
		logging.String("category", string(category)),
		logging.Float64("previous", previous.Threshold),
		logging.Float64("threshold", setting.Threshold),
		logging.String("actor", actor),
	)
	return nil
}

func (r *Registry) publish(p *Profile) {
	p.version = r.version.Add(1)
	r.current.Store(p)
}
