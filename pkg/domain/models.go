package domain

import (
	"strings"
	"time"
)

// AllEquivalents is the filter value that selects every equivalent.
const AllEquivalents = "ALL"

// IsAllEquivalents reports whether code selects every equivalent. A blank
// code is treated the same as "ALL".
func IsAllEquivalents(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || strings.EqualFold(code, AllEquivalents)
}

// ParticipantType classifies a participant. The set is open; the ledger may
// introduce new types at any time.
type ParticipantType string

const (
	ParticipantTypePerson   ParticipantType = "person"
	ParticipantTypeBusiness ParticipantType = "business"
)

type ParticipantStatus string

const (
	ParticipantStatusActive    ParticipantStatus = "active"
	ParticipantStatusSuspended ParticipantStatus = "suspended"
	ParticipantStatusLeft      ParticipantStatus = "left"
	ParticipantStatusDeleted   ParticipantStatus = "deleted"
)

// Participant represents a member of the trust network
type Participant struct {
	PID         string            `json:"pid" yaml:"pid" db:"pid" validate:"required"`
	DisplayName string            `json:"display_name" yaml:"display_name" db:"display_name"`
	Type        ParticipantType   `json:"type" yaml:"type" db:"type"`
	Status      ParticipantStatus `json:"status" yaml:"status" db:"status"`
}

// Equivalent is a unit of account with a fixed decimal precision
type Equivalent struct {
	Code      string `json:"code" yaml:"code" db:"code" validate:"required"`
	Precision int    `json:"precision" yaml:"precision" db:"precision" validate:"gte=0"`
	IsActive  bool   `json:"is_active" yaml:"is_active" db:"is_active"`
}

type TrustlineStatus string

const (
	TrustlineStatusActive TrustlineStatus = "active"
	TrustlineStatusFrozen TrustlineStatus = "frozen"
	TrustlineStatusClosed TrustlineStatus = "closed"
)

// Trustline is a directed credit line: From extends credit to To.
type Trustline struct {
	Equivalent string          `json:"equivalent" yaml:"equivalent" db:"equivalent" validate:"required"`
	From       string          `json:"from" yaml:"from" db:"from_pid" validate:"required"`
	To         string          `json:"to" yaml:"to" db:"to_pid" validate:"required"`
	Limit      string          `json:"limit" yaml:"limit" db:"limit_amount" validate:"decimal_string"`
	Used       string          `json:"used" yaml:"used" db:"used_amount" validate:"decimal_string"`
	Available  string          `json:"available" yaml:"available" db:"available_amount" validate:"decimal_string"`
	Status     TrustlineStatus `json:"status" yaml:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at" db:"created_at"`
}

// Debt is the amount Debtor currently owes Creditor in one equivalent.
type Debt struct {
	Equivalent string `json:"equivalent" yaml:"equivalent" db:"equivalent" validate:"required"`
	Debtor     string `json:"debtor" yaml:"debtor" db:"debtor_pid" validate:"required"`
	Creditor   string `json:"creditor" yaml:"creditor" db:"creditor_pid" validate:"required"`
	Amount     string `json:"amount" yaml:"amount" db:"amount" validate:"decimal_string"`
}

// Incident is a stuck transaction awaiting operator attention.
type Incident struct {
	TxID         string `json:"tx_id" yaml:"tx_id" db:"tx_id" validate:"required"`
	InitiatorPID string `json:"initiator_pid" yaml:"initiator_pid" db:"initiator_pid"`
	Equivalent   string `json:"equivalent" yaml:"equivalent" db:"equivalent"`
	AgeSeconds   int64  `json:"age_seconds" yaml:"age_seconds" db:"age_seconds" validate:"gte=0"`
	SLASeconds   int64  `json:"sla_seconds" yaml:"sla_seconds" db:"sla_seconds" validate:"gte=0"`
}

// OverSLA reports whether the incident has been stuck longer than its SLA.
func (i Incident) OverSLA() bool {
	return i.AgeSeconds > i.SLASeconds
}

// AuditLogEntry is an administrative action record
type AuditLogEntry struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp" db:"timestamp"`
	ActorID    string    `json:"actor_id" yaml:"actor_id" db:"actor_id"`
	Action     string    `json:"action" yaml:"action" db:"action"`
	ObjectType string    `json:"object_type" yaml:"object_type" db:"object_type"`
	ObjectID   string    `json:"object_id" yaml:"object_id" db:"object_id"`
}

type TransactionType string

const (
	TransactionTypePayment  TransactionType = "PAYMENT"
	TransactionTypeClearing TransactionType = "CLEARING"
)

// TransactionStateCommitted is the terminal success state of a transaction.
const TransactionStateCommitted = "COMMITTED"

// Transaction represents a ledger transaction
type Transaction struct {
	TxID         string          `json:"tx_id" yaml:"tx_id" db:"tx_id" validate:"required"`
	Type         TransactionType `json:"type" yaml:"type" db:"type"`
	InitiatorPID string          `json:"initiator_pid" yaml:"initiator_pid" db:"initiator_pid"`
	State        string          `json:"state" yaml:"state" db:"state"`
	UpdatedAt    time.Time       `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// CycleEdge is one debt inside a clearing cycle.
type CycleEdge struct {
	Debtor     string `json:"debtor" yaml:"debtor"`
	Creditor   string `json:"creditor" yaml:"creditor"`
	Amount     string `json:"amount" yaml:"amount"`
	Equivalent string `json:"equivalent" yaml:"equivalent"`
}

// ClearingCycle is a closed loop of debts, in order.
type ClearingCycle struct {
	Edges []CycleEdge `json:"edges" yaml:"edges"`
}

// Snapshot is the raw collection set the engine derives every view from.
//
// Transactions is optional: a nil slice means the dataset was not supplied,
// which is different from an empty one.
type Snapshot struct {
	Participants []Participant              `json:"participants" yaml:"participants"`
	Trustlines   []Trustline                `json:"trustlines" yaml:"trustlines"`
	Debts        []Debt                     `json:"debts" yaml:"debts"`
	Incidents    []Incident                 `json:"incidents" yaml:"incidents"`
	Equivalents  []Equivalent               `json:"equivalents" yaml:"equivalents"`
	AuditLog     []AuditLogEntry            `json:"audit_log" yaml:"audit_log"`
	Transactions []Transaction              `json:"transactions" yaml:"transactions"`
	Cycles       map[string][]ClearingCycle `json:"clearing_cycles,omitempty" yaml:"clearing_cycles,omitempty"`
	FetchedAt    time.Time                  `json:"fetched_at" yaml:"fetched_at"`
}

// HasTransactions reports whether the optional transactions dataset is present.
func (s *Snapshot) HasTransactions() bool {
	return s != nil && s.Transactions != nil
}
