// Package types defines the mirrored row entities, the table names, the
// Mirror and Table interfaces, the inbound message contract, and the
// standard errors for the frontdesk relational mirror.
package types
