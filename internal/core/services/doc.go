// Package services contains the core business logic for Curator.
//
// Services implement the driving ports and depend only on driven ports
// and domain types. The central piece is the WorkflowEngine: a
// resumable state machine that segments input text, extracts keywords
// per chunk, deduplicates against the similarity store, and suspends
// for a human decision when a near-duplicate is found.
//
// # Import Rules
//
//   - Can Import: domain, ports/driven, ports/driving, logger
//   - Cannot Import: Any adapter package
package services
