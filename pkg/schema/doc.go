// Package schema enforces the structural rules of the session document.
//
// Validation is strict and non-coercive: a write that breaks a rule is
// rejected with a typed error naming the offending field and value, and the
// document is left untouched. Flow.Data is deliberately outside the schema.
package schema
