// Package types declares the core types shared across runitsv: the
// filesystem abstraction, the record capability that every reconciled
// entry implements, and the report structures returned to callers.
//
// A Record describes the desired state of exactly one filesystem path
// together with the logic to detect whether the path drifted from that
// state and to apply the transition. Records are built fresh for each
// reconciliation run and never outlive it.
package types
