package reactive

import (
	"fmt"

	"go.uber.org/zap"
)

// Config describes everything a Reconciler needs. It is copied by New and
// never consulted again through the caller's value.
type Config[E any, K comparable, R any] struct {
	// Container receives the render targets.
	Container Container[R]
	// Root is the outermost render target the reconciler owns. Locate
	// ignores anything outside it.
	Root R
	// Template is cloned once per binding. It should already be detached.
	Template R

	// Clone deep-copies the template.
	Clone func(R) R
	// Compile builds push/pull accessors for a fresh clone.
	Compile Compiler[R]
	// Contains reports whether candidate is ancestor or one of its descendants.
	Contains func(ancestor, candidate R) bool
	// Destroy, if set, releases a render target after it leaves the container.
	Destroy func(R)

	// Compare orders entities. It must be a consistent total order.
	Compare func(a, b E) int
	// Identify maps an entity to a key that survives sort-key changes.
	Identify func(E) K

	// Get reads the value at key from an entity for pushing.
	Get func(e E, key string) any
	// Set writes a pulled value into an entity. Only Pull needs it.
	Set func(e E, key string, value any) error

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *Config[E, K, R]) validate() error {
	var missing string
	switch {
	case c.Container == nil:
		missing = "Container"
	case c.Clone == nil:
		missing = "Clone"
	case c.Compile == nil:
		missing = "Compile"
	case c.Contains == nil:
		missing = "Contains"
	case c.Compare == nil:
		missing = "Compare"
	case c.Identify == nil:
		missing = "Identify"
	case c.Get == nil:
		missing = "Get"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s is required", ErrInvalidConfig, missing)
}
