package urlkeeper

import "errors"

var (
	// ErrCannotResolve is an exported constant or variable used by the URL lifecycle engine.
	ErrCannotResolve = errors.New("reference cannot be resolved to a storage key")
	// ErrExhausted is an exported constant or variable used by the URL lifecycle engine.
	ErrExhausted = errors.New("refresh attempts exhausted")
	// ErrBindingDisposed is an exported constant or variable used by the URL lifecycle engine.
	ErrBindingDisposed = errors.New("binding disposed")
	// ErrEngineClosed is an exported constant or variable used by the URL lifecycle engine.
	ErrEngineClosed = errors.New("engine closed")
	// ErrEngineNotReady is an exported constant or variable used by the URL lifecycle engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
