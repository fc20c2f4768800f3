package mapdoc

import "sync"

// Registry manages a collection of document-format parsers.
type Registry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	extIndex map[string]Parser
	order    []string
}

// NewRegistry creates a new parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:  make(map[string]Parser),
		extIndex: make(map[string]Parser),
		order:    make([]string, 0),
	}
}

// Register adds a parser to the registry, indexing it by format name and
// file extensions.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	format := p.Format()
	if _, exists := r.parsers[format]; !exists {
		r.order = append(r.order, format)
	}
	r.parsers[format] = p
	for _, ext := range p.Extensions() {
		r.extIndex[ext] = p
	}
}

// Get retrieves a parser by format name.
func (r *Registry) Get(format string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[format]
	return p, ok
}

// GetByExtension retrieves a parser by file extension (e.g. ".tmx", ".json").
func (r *Registry) GetByExtension(ext string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.extIndex[ext]
	return p, ok
}

// SupportedExtensions returns all file extensions that have a registered parser.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extIndex))
	for ext := range r.extIndex {
		exts = append(exts, ext)
	}
	return exts
}
