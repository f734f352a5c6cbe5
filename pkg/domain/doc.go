// Package domain defines the session document and the value types shared by
// every layer of the engine: the durable Session, its Flow position, outbound
// message payloads and audit actions.
//
// The document has exactly one canonical location for identity and credential
// fields (the top level); the schema package enforces that writes never
// duplicate them elsewhere. Flow.Data is the single deliberately unvalidated
// region, used as scratch space between steps.
package domain
