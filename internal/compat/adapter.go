// Package compat implements the legacy bulk storage contract
// (get/set/remove/clear over whole collections) on top of the per-record
// storage manager.
//
// Adapter is the error-returning API. Legacy wraps it in the historical
// callback shape, where failures are logged and degrade to empty results.
package compat

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// Storage is what the adapter needs from the storage manager.
type Storage interface {
	GetPathways(ctx context.Context) ([]domain.Pathway, error)
	SavePathway(ctx context.Context, p domain.Pathway) error
	DeletePathway(ctx context.Context, id string) error
	ClearPathways(ctx context.Context) error

	GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error)
	SetSetting(ctx context.Context, key string, value json.RawMessage) error
	ListSettings(ctx context.Context) (map[string]json.RawMessage, error)
	DeleteSetting(ctx context.Context, key string) error
	ClearSettings(ctx context.Context) error

	GetGitHubConfig(ctx context.Context) (domain.GitHubConfig, error)
	SetGitHubConfigFields(ctx context.Context, fields map[string]string) error
	ClearGitHubConfigField(ctx context.Context, field string) error
	DeleteGitHubConfig(ctx context.Context) error
}

// Adapter translates bulk legacy calls into Storage operations.
//
// Concurrent Set calls touching pathways are not isolated from each other:
// each computes its keep-set from its own read of the collection.
type Adapter struct {
	storage Storage
	log     logger.Logger
	now     func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides time.Now for id synthesis.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func New(storage Storage, log logger.Logger, opts ...Option) *Adapter {
	a := &Adapter{storage: storage, log: log.Named("compat"), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ─────────────────────────────
// get
// ─────────────────────────────

// Get resolves keys the way the legacy API does. keys may be nil (every
// setting, the pathway list and the flattened config fields), a string,
// a list of strings, or a map of key to default value.
//
// Missing keys are omitted, except "pathways" which is always present as
// a list. With a defaults map a missing key takes its default, and
// "pathways" takes its default only when the stored list is empty.
func (a *Adapter) Get(ctx context.Context, keys any) (map[string]any, error) {
	r := &reader{storage: a.storage}

	switch k := keys.(type) {
	case nil:
		return r.all(ctx)
	case map[string]any:
		out := make(map[string]any, len(k))
		for _, key := range sortedKeys(k) {
			v, found, err := r.lookup(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				out[key] = v
			} else {
				out[key] = k[key]
			}
		}
		return out, nil
	default:
		list, err := keyList(keys)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(list))
		for _, key := range list {
			v, found, err := r.lookup(ctx, key)
			if err != nil {
				return nil, err
			}
			if found || classify(key) == kindPathways {
				out[key] = v
			}
		}
		return out, nil
	}
}

// reader caches the config singleton for the duration of one Get.
type reader struct {
	storage Storage
	config  *domain.GitHubConfig
}

// lookup resolves one key. found is false when nothing usable is stored:
// a missing setting, an empty config field or an empty pathway list.
// The pathway list is still returned in that last case.
func (r *reader) lookup(ctx context.Context, key string) (value any, found bool, err error) {
	switch classify(key) {
	case kindPathways:
		pathways, err := r.storage.GetPathways(ctx)
		if err != nil {
			return nil, false, err
		}
		return pathways, len(pathways) > 0, nil

	case kindConfig:
		cfg, err := r.gitHubConfig(ctx)
		if err != nil {
			return nil, false, err
		}
		field, _ := ConfigField(key)
		v, _ := cfg.Get(field)
		return v, v != "", nil

	default:
		raw, found, err := r.storage.GetSetting(ctx, key)
		if err != nil || !found {
			return nil, false, err
		}
		return raw, true, nil
	}
}

func (r *reader) gitHubConfig(ctx context.Context) (domain.GitHubConfig, error) {
	if r.config != nil {
		return *r.config, nil
	}
	cfg, err := r.storage.GetGitHubConfig(ctx)
	if err != nil {
		return cfg, err
	}
	r.config = &cfg
	return cfg, nil
}

func (r *reader) all(ctx context.Context) (map[string]any, error) {
	settings, err := r.storage.ListSettings(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(settings)+1+len(configKeyOrder))
	for k, v := range settings {
		if classify(k) == kindSetting {
			out[k] = v
		}
	}

	pathways, err := r.storage.GetPathways(ctx)
	if err != nil {
		return nil, err
	}
	out[PathwaysKey] = pathways

	cfg, err := r.gitHubConfig(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range configKeyOrder {
		field, _ := ConfigField(key)
		if v, _ := cfg.Get(field); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// ─────────────────────────────
// set
// ─────────────────────────────

// Set applies items: "pathways" is reconciled against the stored
// collection, config keys are merged into the singleton and everything
// else is stored as a setting. A failure in one group does not stop the
// others; the errors are joined.
func (a *Adapter) Set(ctx context.Context, items map[string]any) error {
	var errs []error

	if v, ok := items[PathwaysKey]; ok {
		pathways, err := decodePathways(v)
		if err == nil {
			err = a.ReplacePathways(ctx, pathways)
		}
		errs = append(errs, err)
	}

	fields := make(map[string]string)
	for _, key := range configKeyOrder {
		v, ok := items[key]
		if !ok {
			continue
		}
		s, err := configValue(key, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		field, _ := ConfigField(key)
		fields[field] = s
	}
	if len(fields) > 0 {
		errs = append(errs, a.storage.SetGitHubConfigFields(ctx, fields))
	}

	for _, key := range sortedKeys(items) {
		if classify(key) != kindSetting {
			continue
		}
		raw, err := settingValue(key, items[key])
		if err == nil {
			err = a.storage.SetSetting(ctx, key, raw)
		}
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ReplacePathways makes incoming the stored collection while keeping
// record identity stable.
//
// The pathway at index i takes the id of the record currently stored at
// index i, so an edit in place keeps its id even when the caller omitted
// it. Without a positional match a caller-supplied id is kept, otherwise
// one is synthesised. Every pathway gets SortOrder i and is upserted in
// order. Stored records whose id was not kept are then deleted.
//
// Position always wins: a reorder hands the stored id at each index to
// whichever pathway now sits there.
func (a *Adapter) ReplacePathways(ctx context.Context, incoming []domain.Pathway) error {
	existing, err := a.storage.GetPathways(ctx)
	if err != nil {
		return err
	}

	now := a.now()
	kept := make(map[string]struct{}, len(incoming))
	stored := make(map[string]struct{}, len(existing))
	for _, old := range existing {
		stored[old.ID] = struct{}{}
	}

	for i := range incoming {
		p := incoming[i]

		switch {
		case i < len(existing) && existing[i].ID != "":
			p.ID = existing[i].ID
		case p.ID == "":
			p.ID = domain.NewPathwayID(p.Created, now, i)
		}

		if _, dup := kept[p.ID]; dup {
			fresh := freshPathwayID(now, i, kept, stored)
			a.log.Warn("pathway id already used in this batch, minting a new one",
				logger.String("id", p.ID),
				logger.String("new_id", fresh),
				logger.Int("index", i))
			p.ID = fresh
		}

		p.SetSortOrder(i)
		kept[p.ID] = struct{}{}

		if err := a.storage.SavePathway(ctx, p); err != nil {
			return err
		}
	}

	deleted := 0
	for _, old := range existing {
		if _, ok := kept[old.ID]; ok {
			continue
		}
		if err := a.storage.DeletePathway(ctx, old.ID); err != nil {
			return err
		}
		deleted++
	}

	a.log.Debug("pathways reconciled",
		logger.Int("saved", len(incoming)),
		logger.Int("deleted", deleted))
	return nil
}

// freshPathwayID mints an id for index i that is neither used in this
// batch nor held by a stored record.
func freshPathwayID(now time.Time, i int, kept, stored map[string]struct{}) string {
	base := domain.FallbackPathwayID(now, i)
	id := base
	for n := 1; ; n++ {
		_, inBatch := kept[id]
		_, inStore := stored[id]
		if !inBatch && !inStore {
			return id
		}
		id = base + "_" + strconv.Itoa(n)
	}
}

// ─────────────────────────────
// remove / clear
// ─────────────────────────────

// Remove deletes keys. "pathways" wipes the whole collection, a config key
// empties that field, anything else deletes the setting.
func (a *Adapter) Remove(ctx context.Context, keys any) error {
	list, err := keyList(keys)
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range list {
		switch classify(key) {
		case kindPathways:
			errs = append(errs, a.storage.ClearPathways(ctx))
		case kindConfig:
			field, _ := ConfigField(key)
			errs = append(errs, a.storage.ClearGitHubConfigField(ctx, field))
		default:
			errs = append(errs, a.storage.DeleteSetting(ctx, key))
		}
	}
	return errors.Join(errs...)
}

// Clear deletes every pathway, every setting and the config singleton.
func (a *Adapter) Clear(ctx context.Context) error {
	return errors.Join(
		a.storage.ClearPathways(ctx),
		a.storage.ClearSettings(ctx),
		a.storage.DeleteGitHubConfig(ctx),
	)
}
