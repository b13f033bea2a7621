package reactive

import "errors"

var (
	// ErrNotFound means an entity has no binding. The caller's view of the
	// collection has drifted from the reconciler's and should be rebuilt with
	// ReplaceAll.
	ErrNotFound = errors.New("reactive: entity not bound")

	// ErrAmbiguousTemplate means a template does not reduce to exactly one
	// top-level render target.
	ErrAmbiguousTemplate = errors.New("reactive: template must have exactly one top-level target")

	// ErrInvalidConfig means a required Config field is missing.
	ErrInvalidConfig = errors.New("reactive: invalid config")

	// ErrUncomparableIdentity means Identify returned a key that cannot be
	// compared with ==, such as an interface key holding a slice or map.
	ErrUncomparableIdentity = errors.New("reactive: entity identity is not comparable")

	// ErrNoReceiver means Pull was called without a Config.Set function.
	ErrNoReceiver = errors.New("reactive: no value receiver configured")
)
