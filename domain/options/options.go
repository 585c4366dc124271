// Package options models per-plugin settings: declared keys with
// defaults, change callbacks, and persistence through the kv store.
// Values travel as protobuf Value bytes so any process on the event
// pipeline can decode them.
package options

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"mimir/bus"
	"mimir/infra/kv"
)

// TopicChanged carries Changed events on the in-process bus.
const TopicChanged = "options.changed"

// Changed is published after a Set that actually altered a value.
type Changed struct {
	Plugin string
	Key    string
	Value  any
}

// Options is one plugin's option set. Keys must be declared with a
// default before use; the default fixes the value's kind
// (bool, int64, float64, or string).
type Options struct {
	plugin string
	bus    *bus.Bus

	mu       sync.Mutex
	defaults map[string]any
	values   map[string]any
	onChange map[string]func(any)
}

// New creates an empty option set for a plugin. b may be nil when no
// notification fan-out is wanted.
func New(plugin string, b *bus.Bus) *Options {
	return &Options{
		plugin:   plugin,
		bus:      b,
		defaults: make(map[string]any),
		values:   make(map[string]any),
		onChange: make(map[string]func(any)),
	}
}

func (o *Options) Plugin() string { return o.plugin }

// Declare registers a key with its default value. The default's kind
// is the key's kind from then on. Declaring a key twice panics.
func (o *Options) Declare(key string, def any) {
	switch def.(type) {
	case bool, int64, float64, string:
	default:
		panic(fmt.Sprintf("options: unsupported kind %T for %q", def, key))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, dup := o.defaults[key]; dup {
		panic("options: duplicate declaration of " + key)
	}
	o.defaults[key] = def
	o.values[key] = def
}

// OnChange registers the callback fired when key's value changes.
func (o *Options) OnChange(key string, fn func(newValue any)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mustBeDeclared(key)
	o.onChange[key] = fn
}

// Get returns the current value of a declared key.
func (o *Options) Get(key string) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mustBeDeclared(key)
	return o.values[key]
}

func (o *Options) Bool(key string) bool { return o.Get(key).(bool) }

func (o *Options) Int(key string) int64 { return o.Get(key).(int64) }

func (o *Options) Float(key string) float64 { return o.Get(key).(float64) }

func (o *Options) String(key string) string { return o.Get(key).(string) }

// Set updates a key. Setting the current value again is a no-op:
// no callback fires and no event is published.
func (o *Options) Set(key string, val any) {
	o.mu.Lock()
	o.mustBeDeclared(key)
	if fmt.Sprintf("%T", val) != fmt.Sprintf("%T", o.defaults[key]) {
		o.mu.Unlock()
		panic(fmt.Sprintf("options: %q holds %T, not %T", key, o.defaults[key], val))
	}
	if o.values[key] == val {
		o.mu.Unlock()
		return
	}
	o.values[key] = val
	fn := o.onChange[key]
	o.mu.Unlock()

	if fn != nil {
		fn(val)
	}
	if o.bus != nil {
		o.bus.Publish(TopicChanged, Changed{Plugin: o.plugin, Key: key, Value: val})
	}
}

// Save persists every current value to the store.
func (o *Options) Save(store *kv.Store) error {
	o.mu.Lock()
	snapshot := make(map[string]any, len(o.values))
	for k, v := range o.values {
		snapshot[k] = v
	}
	o.mu.Unlock()

	for key, val := range snapshot {
		raw, err := encodeValue(val)
		if err != nil {
			return fmt.Errorf("options: encode %s/%s: %w", o.plugin, key, err)
		}
		if err := store.SetOption(o.plugin, key, raw); err != nil {
			return fmt.Errorf("options: save %s/%s: %w", o.plugin, key, err)
		}
	}
	return nil
}

// Load restores stored values, leaving unsaved keys at their
// declared defaults. Stored keys that are no longer declared are
// ignored. Load goes through Set, so callbacks and events fire for
// values that differ from the defaults.
func (o *Options) Load(store *kv.Store) error {
	return store.ScanOptions(o.plugin, func(key string, raw []byte) error {
		o.mu.Lock()
		def, declared := o.defaults[key]
		o.mu.Unlock()
		if !declared {
			return nil
		}
		val, err := decodeValue(raw, def)
		if err != nil {
			return fmt.Errorf("options: decode %s/%s: %w", o.plugin, key, err)
		}
		o.Set(key, val)
		return nil
	})
}

// Walk visits every declared key with its current value.
func (o *Options) Walk(fn func(key string, val any)) {
	o.mu.Lock()
	snapshot := make(map[string]any, len(o.values))
	for k, v := range o.values {
		snapshot[k] = v
	}
	o.mu.Unlock()

	for k, v := range snapshot {
		fn(k, v)
	}
}

func (o *Options) mustBeDeclared(key string) {
	if _, ok := o.defaults[key]; !ok {
		panic("options: undeclared key " + key)
	}
}

// -------------------- Wire encoding --------------------

func encodeValue(val any) ([]byte, error) {
	// structpb has no integer kind; integers ride as doubles and are
	// narrowed back on decode using the declared default's kind.
	if i, ok := val.(int64); ok {
		val = float64(i)
	}
	pv, err := structpb.NewValue(val)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pv)
}

func decodeValue(raw []byte, def any) (any, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(raw, &pv); err != nil {
		return nil, err
	}
	got := pv.AsInterface()
	if _, wantInt := def.(int64); wantInt {
		f, ok := got.(float64)
		if !ok {
			return nil, fmt.Errorf("stored value is %T, want number", got)
		}
		return int64(f), nil
	}
	if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", def) {
		return nil, fmt.Errorf("stored value is %T, want %T", got, def)
	}
	return got, nil
}
