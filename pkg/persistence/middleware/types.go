// Package middleware provides composable SessionStore decorators. Session
// documents carry credentials and member identifiers, so deployments that
// persist them outside a trusted boundary wrap the store with encryption at
// rest, PII masking, or both.
package middleware

import "github.com/konvo/konvo/pkg/ports"

// Middleware wraps a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares outermost-first: Chain(s, A, B) returns A(B(s)),
// so A sees every write before B does.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
