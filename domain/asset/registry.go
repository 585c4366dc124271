package asset

import (
	"fmt"
	"strings"
	"sync"

	"mimir/bus"
	"mimir/cell"
)

// TopicRegistered carries Registered events on the in-process bus.
const TopicRegistered = "asset.registered"

// Registered is published when a handler claims an asset type.
type Registered struct {
	Type       string
	Extensions []string
}

// Registry maps asset types and file extensions to their handlers.
type Registry struct {
	bus *bus.Bus

	mu     sync.RWMutex
	byType map[string]Handler
	byExt  map[string]Handler
}

func NewRegistry(b *bus.Bus) *Registry {
	return &Registry{
		bus:    b,
		byType: make(map[string]Handler),
		byExt:  make(map[string]Handler),
	}
}

// Register claims h's asset type and extensions, and announces the
// registration on the bus. A type or extension already claimed by
// another handler is an error.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	if _, dup := r.byType[h.Type()]; dup {
		r.mu.Unlock()
		return fmt.Errorf("asset: type %q already registered", h.Type())
	}
	for _, ext := range h.Extensions() {
		if _, dup := r.byExt[normalizeExt(ext)]; dup {
			r.mu.Unlock()
			return fmt.Errorf("asset: extension %q already registered", ext)
		}
	}
	r.byType[h.Type()] = h
	for _, ext := range h.Extensions() {
		r.byExt[normalizeExt(ext)] = h
	}
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(TopicRegistered, Registered{
			Type:       h.Type(),
			Extensions: h.Extensions(),
		})
	}
	return nil
}

// Deregister releases a type and its extensions.
func (r *Registry) Deregister(typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byType[typ]
	if !ok {
		return
	}
	delete(r.byType, typ)
	for _, ext := range h.Extensions() {
		delete(r.byExt, normalizeExt(ext))
	}
}

// ForType returns the handler registered for an asset type.
func (r *Registry) ForType(typ string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byType[typ]
	return h, ok
}

// ForExtension returns the handler claiming a file extension.
// A leading dot is accepted.
func (r *Registry) ForExtension(ext string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byExt[normalizeExt(ext)]
	return h, ok
}

// Types lists the registered asset types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for typ := range r.byType {
		out = append(out, typ)
	}
	return out
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}

// -------------------- Default registry --------------------

// The process-wide registry lives in a cell: gems register handlers
// from their own init paths, and no package is guaranteed to run
// before another. Readers block until Publish has run.
var defaultRegistry cell.Cell[Registry]

// PublishDefault constructs and publishes the process-wide registry.
// Called once during startup wiring.
func PublishDefault(b *bus.Bus) *Registry {
	if err := defaultRegistry.Construct(func(r *Registry) error {
		r.bus = b
		r.byType = make(map[string]Handler)
		r.byExt = make(map[string]Handler)
		return nil
	}); err != nil {
		panic(err) // constructor above never returns an error
	}
	return defaultRegistry.Get()
}

// Default returns the process-wide registry, waiting for
// PublishDefault if startup is still in flight on another goroutine.
func Default() *Registry {
	return defaultRegistry.Get()
}
