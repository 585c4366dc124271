package service

import (
	"errors"
	"fmt"
	"sync"

	"mimir/domain/asset"
	"mimir/domain/options"
	"mimir/infra/kv"
	"mimir/infra/sequence"
	"mimir/snapshot"
)

/*
RegistryService is the ONLY write entry point into the system.

All coordination between:
- domain (options, assets)
- infra (kv, sequence)
- snapshot
happens here.
*/

var (
	ErrUnknownPlugin = errors.New("service: unknown plugin")
	ErrNoAsset       = errors.New("service: no such asset")
	ErrNoHandler     = errors.New("service: no handler for asset type")
)

type RegistryService struct {
	store    *kv.Store
	handlers *asset.Registry
	seq      *sequence.Sequencer

	mu      sync.RWMutex
	plugins map[string]*options.Options
}

// NewRegistryService wires all dependencies.
// No globals. No magic.
func NewRegistryService(
	store *kv.Store,
	handlers *asset.Registry,
	seq *sequence.Sequencer,
) *RegistryService {
	return &RegistryService{
		store:    store,
		handlers: handlers,
		seq:      seq,
		plugins:  make(map[string]*options.Options),
	}
}

// Recover aligns the sequencer with the outbox after restart.
func (s *RegistryService) Recover() error {
	maxSeq, err := s.store.MaxEventSeq()
	if err != nil {
		return err
	}
	s.seq.Reset(maxSeq)
	return nil
}

//
// ──────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────
//

// Attach adopts a plugin's option set: stored values are loaded over
// its defaults and subsequent writes go through SetOption.
func (s *RegistryService) Attach(o *options.Options) error {
	if err := o.Load(s.store); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.plugins[o.Plugin()]; dup {
		return fmt.Errorf("service: plugin %q already attached", o.Plugin())
	}
	s.plugins[o.Plugin()] = o
	return nil
}

// Options returns an attached plugin's option set.
func (s *RegistryService) Options(plugin string) (*options.Options, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.plugins[plugin]
	return o, ok
}

// SetOption updates one option, persists the plugin's table, and
// queues a change event for broadcast.
func (s *RegistryService) SetOption(plugin, key string, val any) error {
	o, ok := s.Options(plugin)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, plugin)
	}

	// 1. Mutate the domain object (fires callbacks and the bus).
	o.Set(key, val)

	// 2. Persist.
	if err := o.Save(s.store); err != nil {
		return err
	}

	// 3. Queue for broadcast.
	return s.appendEvent(Event{
		Type:   EventOptionChanged,
		Plugin: plugin,
		Key:    key,
	})
}

// ExportOptions writes a gob snapshot of every attached plugin's
// current values.
func (s *RegistryService) ExportOptions(dir string) error {
	s.mu.RLock()
	entries := make([]snapshot.Entry, 0, 64)
	for plugin, o := range s.plugins {
		o.Walk(func(key string, val any) {
			entries = append(entries, snapshot.Entry{
				Plugin: plugin,
				Key:    key,
				Value:  val,
			})
		})
	}
	s.mu.RUnlock()

	w := &snapshot.Writer{Dir: dir}
	return w.Write(s.seq.Current(), entries)
}

// ImportOptions replays a snapshot through SetOption, so callbacks,
// persistence, and broadcast all apply. Entries for plugins that are
// not attached are skipped.
func (s *RegistryService) ImportOptions(dir string) error {
	snap, err := snapshot.Load(dir)
	if err != nil {
		return err
	}
	for _, e := range snap.Entries {
		if _, ok := s.Options(e.Plugin); !ok {
			continue
		}
		if err := s.SetOption(e.Plugin, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

//
// ──────────────────────────────────────────────────────────
// Assets
// ──────────────────────────────────────────────────────────
//

// PutAsset serializes an asset through its type's handler, stores
// the frame, and queues a change event.
func (s *RegistryService) PutAsset(a *asset.Asset) error {
	h, ok := s.handlers.ForType(a.Type)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, a.Type)
	}
	frame, err := h.Save(a)
	if err != nil {
		return err
	}
	if err := s.store.PutAsset(a.ID, frame); err != nil {
		return err
	}
	return s.appendEvent(Event{
		Type:    EventAssetPut,
		AssetID: a.ID,
	})
}

// GetAsset loads and decodes a stored asset through its handler.
func (s *RegistryService) GetAsset(id uint64) (*asset.Asset, error) {
	frame, ok, err := s.store.GetAsset(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoAsset, id)
	}

	// Peek the type to pick the handler, then let the handler load.
	peek, err := asset.Decode(frame)
	if err != nil {
		return nil, err
	}
	h, ok := s.handlers.ForType(peek.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, peek.Type)
	}

	a := h.New(id)
	if err := h.Load(a, frame); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAsset removes a stored asset and queues a change event.
func (s *RegistryService) DeleteAsset(id uint64) error {
	if err := s.store.DeleteAsset(id); err != nil {
		return err
	}
	return s.appendEvent(Event{
		Type:    EventAssetDeleted,
		AssetID: id,
	})
}

//
// ──────────────────────────────────────────────────────────
// Outbox
// ──────────────────────────────────────────────────────────
//

func (s *RegistryService) appendEvent(e Event) error {
	e.V = eventVersion
	e.Seq = s.seq.Next()
	return s.store.AppendEvent(e.Seq, e.encode())
}
