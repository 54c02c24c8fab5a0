// Package storage is the typed facade over the Persistent Store.
//
// Every Manager operation first waits on the readiness gate, so callers can
// use a Manager straight out of Open while the backend is still opening.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/gate"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/store"
)

// ErrMissingID is returned by SavePathway for a pathway without an id.
var ErrMissingID = errors.New("pathway id is required")

// Manager translates domain operations into store calls.
type Manager struct {
	store store.Store
	gate  *gate.Gate
	log   logger.Logger

	// configMu serialises read-modify-write of the GitHub singleton.
	configMu sync.Mutex
}

// New wraps s without starting it. The first operation (or Init) opens
// the store.
func New(s store.Store, log logger.Logger) *Manager {
	m := &Manager{store: s, log: log.Named("storage")}
	m.gate = gate.New(m.open)
	return m
}

// Open returns a Manager whose store is already opening in the background.
func Open(ctx context.Context, s store.Store, log logger.Logger) *Manager {
	m := New(s, log)
	m.gate.Start(ctx)
	return m
}

func (m *Manager) open(ctx context.Context) error {
	if err := m.store.Init(ctx); err != nil {
		m.log.Error("store failed to open", logger.Error(err))
		return err
	}
	m.log.Debug("store ready")
	return nil
}

// Init opens the store if needed and waits for the result. Every caller
// shares the same in-flight open.
func (m *Manager) Init(ctx context.Context) error {
	m.gate.Start(context.WithoutCancel(ctx))
	return m.gate.Wait(ctx)
}

// Ready is closed once the store has opened or failed.
func (m *Manager) Ready() <-chan struct{} { return m.gate.Ready() }

// Err is the open error once resolved.
func (m *Manager) Err() error { return m.gate.Err() }

// Close releases the backend.
func (m *Manager) Close() error { return m.store.Close() }

func (m *Manager) await(ctx context.Context) error {
	return m.gate.Wait(ctx)
}

// ─────────────────────────────
// Pathways
// ─────────────────────────────

// GetPathways returns every pathway ordered by SortOrder, unordered
// records last by Created. Undecodable records are skipped.
func (m *Manager) GetPathways(ctx context.Context) ([]domain.Pathway, error) {
	if err := m.await(ctx); err != nil {
		return nil, err
	}

	records, err := m.store.GetAll(ctx, store.Pathways)
	if err != nil {
		return nil, err
	}

	pathways := make([]domain.Pathway, 0, len(records))
	for _, rec := range records {
		var p domain.Pathway
		if err := json.Unmarshal(rec.Value, &p); err != nil {
			m.log.Warn("skipping undecodable pathway",
				logger.String("key", rec.Key), logger.Error(err))
			continue
		}
		if p.ID == "" {
			p.ID = rec.Key
		}
		pathways = append(pathways, p)
	}

	domain.SortPathways(pathways)
	return pathways, nil
}

// GetPathway returns one pathway. found is false when id is unknown.
func (m *Manager) GetPathway(ctx context.Context, id string) (p domain.Pathway, found bool, err error) {
	if err := m.await(ctx); err != nil {
		return p, false, err
	}

	data, err := m.store.Get(ctx, store.Pathways, id)
	if store.IsNotFound(err) {
		return p, false, nil
	}
	if err != nil {
		return p, false, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, false, fmt.Errorf("%w: pathway %s: %w", store.ErrSerialization, id, err)
	}
	return p, true, nil
}

// SavePathway upserts the full record. The caller assigns the id.
func (m *Manager) SavePathway(ctx context.Context, p domain.Pathway) error {
	if p.ID == "" {
		return ErrMissingID
	}
	if err := m.await(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: pathway %s: %w", store.ErrSerialization, p.ID, err)
	}
	return m.store.Put(ctx, store.Pathways, p.ID, data)
}

// DeletePathway removes the record. A missing id is not an error.
func (m *Manager) DeletePathway(ctx context.Context, id string) error {
	if err := m.await(ctx); err != nil {
		return err
	}
	return m.store.Delete(ctx, store.Pathways, id)
}

// ─────────────────────────────
// Settings
// ─────────────────────────────

// GetSetting returns the raw JSON stored under key, byte for byte.
func (m *Manager) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := m.await(ctx); err != nil {
		return nil, false, err
	}

	data, err := m.store.Get(ctx, store.Settings, key)
	if store.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(data), true, nil
}

// SetSetting stores value under key. value must be valid JSON.
func (m *Manager) SetSetting(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("%w: setting %q is not valid JSON", store.ErrSerialization, key)
	}
	if err := m.await(ctx); err != nil {
		return err
	}
	return m.store.Put(ctx, store.Settings, key, value)
}

// ListSettings returns every setting keyed by name.
func (m *Manager) ListSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := m.await(ctx); err != nil {
		return nil, err
	}

	records, err := m.store.GetAll(ctx, store.Settings)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(records))
	for _, rec := range records {
		out[rec.Key] = json.RawMessage(rec.Value)
	}
	return out, nil
}

func (m *Manager) DeleteSetting(ctx context.Context, key string) error {
	if err := m.await(ctx); err != nil {
		return err
	}
	return m.store.Delete(ctx, store.Settings, key)
}

// ─────────────────────────────
// GitHub config
// ─────────────────────────────

// GetGitHubConfig returns the singleton, or a zero config when none is
// stored.
func (m *Manager) GetGitHubConfig(ctx context.Context) (domain.GitHubConfig, error) {
	if err := m.await(ctx); err != nil {
		return domain.GitHubConfig{}, err
	}
	return m.loadConfig(ctx)
}

// SetGitHubConfig merges the non-empty fields of patch into the stored
// singleton.
func (m *Manager) SetGitHubConfig(ctx context.Context, patch domain.GitHubConfig) error {
	return m.updateConfig(ctx, func(cfg *domain.GitHubConfig) error {
		cfg.Merge(patch)
		return nil
	})
}

// SetGitHubConfigFields assigns each named field, empty values included.
func (m *Manager) SetGitHubConfigFields(ctx context.Context, fields map[string]string) error {
	return m.updateConfig(ctx, func(cfg *domain.GitHubConfig) error {
		for name, value := range fields {
			if !cfg.Set(name, value) {
				return fmt.Errorf("unknown github config field %q", name)
			}
		}
		return nil
	})
}

// ClearGitHubConfigField empties one field. The record is dropped once
// every field is empty.
func (m *Manager) ClearGitHubConfigField(ctx context.Context, field string) error {
	return m.updateConfig(ctx, func(cfg *domain.GitHubConfig) error {
		if !cfg.Set(field, "") {
			return fmt.Errorf("unknown github config field %q", field)
		}
		return nil
	})
}

// DeleteGitHubConfig removes the singleton.
func (m *Manager) DeleteGitHubConfig(ctx context.Context) error {
	if err := m.await(ctx); err != nil {
		return err
	}
	m.configMu.Lock()
	defer m.configMu.Unlock()
	return m.store.Delete(ctx, store.GitHub, store.ConfigKey)
}

func (m *Manager) updateConfig(ctx context.Context, mutate func(*domain.GitHubConfig) error) error {
	if err := m.await(ctx); err != nil {
		return err
	}

	m.configMu.Lock()
	defer m.configMu.Unlock()

	cfg, err := m.loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := mutate(&cfg); err != nil {
		return err
	}
	if cfg.IsZero() {
		return m.store.Delete(ctx, store.GitHub, store.ConfigKey)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: github config: %w", store.ErrSerialization, err)
	}
	return m.store.Put(ctx, store.GitHub, store.ConfigKey, data)
}

func (m *Manager) loadConfig(ctx context.Context) (domain.GitHubConfig, error) {
	var cfg domain.GitHubConfig

	data, err := m.store.Get(ctx, store.GitHub, store.ConfigKey)
	if store.IsNotFound(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: github config: %w", store.ErrSerialization, err)
	}
	return cfg, nil
}

// ─────────────────────────────
// Bulk wipes
// ─────────────────────────────

// ClearPathways deletes every stored pathway, including records that no
// longer decode.
func (m *Manager) ClearPathways(ctx context.Context) error {
	return m.clearCollection(ctx, store.Pathways)
}

// ClearSettings deletes every setting.
func (m *Manager) ClearSettings(ctx context.Context) error {
	return m.clearCollection(ctx, store.Settings)
}

func (m *Manager) clearCollection(ctx context.Context, c store.Collection) error {
	if err := m.await(ctx); err != nil {
		return err
	}

	records, err := m.store.GetAll(ctx, c)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := m.store.Delete(ctx, c, rec.Key); err != nil {
			return err
		}
	}
	m.log.Debug("collection cleared", logger.String("collection", string(c)), logger.Int("deleted", len(records)))
	return nil
}
