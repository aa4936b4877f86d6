// Package domain re-exports core domain types so internal code can import
// `trustmap/internal/domain` while using definitions from `trustmap/pkg/domain`.
package domain

import pkg "trustmap/pkg/domain"

// AllEquivalents selects every equivalent in a filter.
const AllEquivalents = pkg.AllEquivalents

// IsAllEquivalents reports whether code selects every equivalent.
func IsAllEquivalents(code string) bool { return pkg.IsAllEquivalents(code) }

// Participant represents a network member.
type Participant = pkg.Participant

// ParticipantType classifies a participant.
type ParticipantType = pkg.ParticipantType

// ParticipantStatus represents the participant lifecycle.
type ParticipantStatus = pkg.ParticipantStatus

// Equivalent represents a unit of account.
type Equivalent = pkg.Equivalent

// Trustline represents a directed credit line.
type Trustline = pkg.Trustline

// TrustlineStatus represents trustline states.
type TrustlineStatus = pkg.TrustlineStatus

// Debt represents an owed amount.
type Debt = pkg.Debt

// Incident represents a stuck transaction.
type Incident = pkg.Incident

// AuditLogEntry represents an administrative action.
type AuditLogEntry = pkg.AuditLogEntry

// Transaction represents a ledger transaction.
type Transaction = pkg.Transaction

// TransactionType represents categories of transactions.
type TransactionType = pkg.TransactionType

// CycleEdge is one hop of a clearing cycle.
type CycleEdge = pkg.CycleEdge

// ClearingCycle represents a closed loop of debts.
type ClearingCycle = pkg.ClearingCycle

// Snapshot is the raw ledger snapshot.
type Snapshot = pkg.Snapshot

// Re-exported participant types.
const (
	ParticipantTypePerson   = pkg.ParticipantTypePerson
	ParticipantTypeBusiness = pkg.ParticipantTypeBusiness
)

// Re-exported participant statuses.
const (
	ParticipantStatusActive    = pkg.ParticipantStatusActive
	ParticipantStatusSuspended = pkg.ParticipantStatusSuspended
	ParticipantStatusLeft      = pkg.ParticipantStatusLeft
	ParticipantStatusDeleted   = pkg.ParticipantStatusDeleted
)

// Re-exported trustline statuses.
const (
	TrustlineStatusActive = pkg.TrustlineStatusActive
	TrustlineStatusFrozen = pkg.TrustlineStatusFrozen
	TrustlineStatusClosed = pkg.TrustlineStatusClosed
)

// Re-exported transaction types and states.
const (
	TransactionTypePayment    = pkg.TransactionTypePayment
	TransactionTypeClearing   = pkg.TransactionTypeClearing
	TransactionStateCommitted = pkg.TransactionStateCommitted
)
