// Package ports declares the interfaces between the engine core and its
// adapters: session persistence, distributed locking, the external accounts
// API and outbound message delivery. Concrete implementations live under
// internal/adapters.
package ports
