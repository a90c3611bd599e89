package loom

import (
	"fmt"
	"sync"
)

// Helper represents a callable helper available to template expressions
type Helper interface {
	// Call executes the helper with the given arguments
	Call(args ...interface{}) (interface{}, error)

	// Name returns the helper name
	Name() string

	// MinArgs returns the minimum number of arguments required
	MinArgs() int

	// MaxArgs returns the maximum number of arguments allowed (-1 for unlimited)
	MaxArgs() int
}

// HelperRegistry manages the helpers visible to expression evaluation.
// The registry handed to a render call is built fresh for that call by
// merging the engine's helpers with the caller's overrides, so evaluation
// never consults process-wide mutable state.
type HelperRegistry interface {
	// Register adds a helper to the registry
	Register(h Helper) error

	// Get retrieves a helper by name
	Get(name string) (Helper, bool)

	// Names returns all registered helper names
	Names() []string
}

// DefaultHelperRegistry is the default implementation of HelperRegistry
type DefaultHelperRegistry struct {
	helpers map[string]Helper
	mutex   sync.RWMutex
}

// NewHelperRegistry creates an empty helper registry
func NewHelperRegistry() *DefaultHelperRegistry {
	return &DefaultHelperRegistry{
		helpers: make(map[string]Helper),
	}
}

func (r *DefaultHelperRegistry) Register(h Helper) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := h.Name()
	if name == "" {
		return fmt.Errorf("helper name cannot be empty")
	}

	r.helpers[name] = h
	return nil
}

func (r *DefaultHelperRegistry) Get(name string) (Helper, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	h, exists := r.helpers[name]
	return h, exists
}

func (r *DefaultHelperRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	return names
}

// clone copies the registry so a render call can layer overrides without
// touching the engine's registry
func (r *DefaultHelperRegistry) clone() *DefaultHelperRegistry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	c := &DefaultHelperRegistry{
		helpers: make(map[string]Helper, len(r.helpers)),
	}
	for name, h := range r.helpers {
		c.helpers[name] = h
	}
	return c
}

// simpleHelper provides a basic implementation of Helper
type simpleHelper struct {
	name    string
	minArgs int
	maxArgs int
	handler HelperFunc
}

// NewSimpleHelper builds a Helper from a handler with argument-count
// validation. maxArgs of -1 means unlimited.
func NewSimpleHelper(name string, minArgs, maxArgs int, handler HelperFunc) Helper {
	return &simpleHelper{
		name:    name,
		minArgs: minArgs,
		maxArgs: maxArgs,
		handler: handler,
	}
}

func (h *simpleHelper) Call(args ...interface{}) (interface{}, error) {
	argCount := len(args)
	if argCount < h.minArgs {
		return nil, fmt.Errorf("helper %s requires at least %d arguments, got %d", h.name, h.minArgs, argCount)
	}
	if h.maxArgs >= 0 && argCount > h.maxArgs {
		return nil, fmt.Errorf("helper %s accepts at most %d arguments, got %d", h.name, h.maxArgs, argCount)
	}

	return h.handler(args...)
}

func (h *simpleHelper) Name() string {
	return h.name
}

func (h *simpleHelper) MinArgs() int {
	return h.minArgs
}

func (h *simpleHelper) MaxArgs() int {
	return h.maxArgs
}

// newBuiltinRegistry returns a registry preloaded with every built-in
// helper. Each engine gets its own copy; there is no shared global table.
func newBuiltinRegistry() *DefaultHelperRegistry {
	registry := NewHelperRegistry()
	registerCoreHelpers(registry)
	registerTextHelpers(registry)
	registerDateHelpers(registry)
	registerNumberHelpers(registry)
	registerMarkupHelpers(registry)
	return registry
}

// mergeHelpers builds the registry for one render call: a copy of the base
// registry with the caller's helpers layered on top. Caller entries shadow
// built-ins of the same name. The result is owned by the call and never
// mutated afterwards.
func mergeHelpers(base *DefaultHelperRegistry, overrides map[string]HelperFunc) HelperRegistry {
	if len(overrides) == 0 {
		return base.clone()
	}

	merged := base.clone()
	for name, fn := range overrides {
		if name == "" || fn == nil {
			continue
		}
		merged.helpers[name] = NewSimpleHelper(name, 0, -1, fn)
	}
	return merged
}
