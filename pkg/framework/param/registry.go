package param

import (
	"fmt"
	"strings"
	"sync"
)

// Registry manages plugin parameters.
//
// The registry lock guards the parameter set, not the values: processors
// resolve the parameters they need once and then read values through the
// lock-free Parameter accessors.
type Registry struct {
	params map[uint32]*Parameter
	order  []uint32
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		order:  make([]uint32, 0),
	}
}

// Add registers parameters. A duplicate ID is an error and nothing after it
// is added.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("duplicate parameter id %d (%s)", p.ID, p.Name)
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// GetByName retrieves a parameter by name or short name, ignoring case
func (r *Registry) GetByName(name string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		p := r.params[id]
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.ShortName, name) {
			return p
		}
	}
	return nil
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}
