package loom

import (
	"fmt"

	"go.uber.org/zap"
)

// Engine provides the main API for working with templates.
// Use New() to create a new engine instance.
type Engine struct {
	config   *Config
	cache    *TemplateCache
	registry *DefaultHelperRegistry
}

// New creates a new template engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new template engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:   config,
		cache:    NewTemplateCache(config),
		registry: newBuiltinRegistry(),
	}
}

// NewFromEnv creates a new template engine configured from LOOM_*
// environment variables and installs a logger at the configured level.
func NewFromEnv() (*Engine, error) {
	config, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := ConfigureLogging(config.LogLevel); err != nil {
		return nil, err
	}
	return NewWithConfig(config), nil
}

// Render expands the template against the data in opts. Caller helpers are
// merged over the engine's registry for this call only, and caller handlers
// extend the directive syntax for this call only. Render never fails;
// unresolvable directives degrade to empty text.
func (e *Engine) Render(opts RenderOptions) string {
	helpers := mergeHelpers(e.registry, opts.Helpers)
	return renderTemplate(opts.Template, opts.Data, helpers, opts.Handlers, e.config.MaxRenderDepth)
}

// LoadTemplate reads a UTF-8 template file from disk. The result is cached
// if caching is enabled in the configuration. This is the one operation that
// can fail: a missing, unreadable, or non-UTF-8 file returns a LoadError.
func (e *Engine) LoadTemplate(path string) (string, error) {
	key := templateCacheKey(path)

	if e.config.CacheMaxSize > 0 && e.cache != nil {
		if text, ok := e.cache.Get(key); ok {
			GetLogger().Debug("template cache hit", zap.String("path", path))
			return text, nil
		}
	}

	text, err := readTemplateFile(path)
	if err != nil {
		return "", err
	}

	if e.config.CacheMaxSize > 0 && e.cache != nil {
		e.cache.Set(key, text)
	}

	return text, nil
}

// RenderFile loads a template file and renders it with the given options.
// opts.Template is ignored; the file contents take its place. The returned
// error is always a LoadError: once the file is read, rendering cannot fail.
func (e *Engine) RenderFile(path string, opts RenderOptions) (string, error) {
	text, err := e.LoadTemplate(path)
	if err != nil {
		return "", err
	}
	opts.Template = text
	return e.Render(opts), nil
}

// RegisterHelper adds a custom helper that can be used in template
// expressions rendered by this engine. It shadows a built-in of the same
// name for every subsequent render.
func (e *Engine) RegisterHelper(name string, fn HelperFunc) error {
	if name == "" {
		return fmt.Errorf("helper name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("helper %s has no implementation", name)
	}
	return e.registry.Register(NewSimpleHelper(name, 0, -1, fn))
}

// HelperProvider supplies a suite of related helpers at once.
type HelperProvider interface {
	ProvideHelpers() map[string]HelperFunc
}

// RegisterHelpersFromProvider registers all helpers from a provider.
func (e *Engine) RegisterHelpersFromProvider(provider HelperProvider) error {
	for name, fn := range provider.ProvideHelpers() {
		if err := e.RegisterHelper(name, fn); err != nil {
			return fmt.Errorf("failed to register helper %s: %w", name, err)
		}
	}
	return nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// SetConfig updates the engine's configuration and rebuilds the template
// cache to match.
func (e *Engine) SetConfig(config *Config) {
	if config == nil {
		config = DefaultConfig()
	}
	e.config = config
	e.cache = NewTemplateCache(config)
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases any resources held by the engine.
func (e *Engine) Close() error {
	// Currently no resources to release, but kept for future use
	return nil
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.SetConfig(config)
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		e.config.CacheMaxSize = maxSize
		e.cache = NewTemplateCache(e.config)
	}
}

// WithHelper returns an option that registers a custom helper.
func WithHelper(name string, fn HelperFunc) Option {
	return func(e *Engine) {
		e.RegisterHelper(name, fn)
	}
}

// WithHelperProvider returns an option that registers helpers from a provider.
func WithHelperProvider(provider HelperProvider) Option {
	return func(e *Engine) {
		e.RegisterHelpersFromProvider(provider)
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is the global default engine instance.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// Render expands a template using the default engine.
func Render(opts RenderOptions) string {
	return DefaultEngine.Render(opts)
}

// LoadTemplate reads a template file using the default engine.
func LoadTemplate(path string) (string, error) {
	return DefaultEngine.LoadTemplate(path)
}

// RenderFile loads and renders a template file using the default engine.
func RenderFile(path string, opts RenderOptions) (string, error) {
	return DefaultEngine.RenderFile(path, opts)
}

// RegisterGlobalHelper adds a custom helper to the default engine.
func RegisterGlobalHelper(name string, fn HelperFunc) error {
	return DefaultEngine.RegisterHelper(name, fn)
}

// ClearCache clears the default engine's template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
