package reactive

// Container holds the render targets of a reconciler, in index order.
// Inserting a target that is already attached moves it.
type Container[R any] interface {
	InsertBefore(target, ref R)
	AppendChild(target R)
	RemoveChild(target R)
}

// Provider returns the model value bound to key.
type Provider func(key string) any

// Receiver stores a value read back from a render target under key.
type Receiver func(key string, value any)

// Accessors push model values into one render target and pull them back out.
type Accessors struct {
	Push func(Provider)
	Pull func(Receiver)
}

// Compiler builds the accessors for a render target. It must be safe to call
// more than once on the same target.
type Compiler[R any] func(target R) (Accessors, error)

// Origin is anything that resolves to a render target, such as an event.
type Origin[R any] interface {
	Origin() R
}
