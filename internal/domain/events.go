package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the logical type name carried in every envelope.
type EventType string

const (
	EventTypeTransferRequested EventType = "TransferRequested"
	EventTypeTransferCompleted EventType = "TransferCompleted"
	EventTypeTransferFailed    EventType = "TransferFailed"
	EventTypeAccountCreated    EventType = "AccountCreated"
	EventTypeAccountApproved   EventType = "AccountApproved"
	EventTypeAccountRejected   EventType = "AccountRejected"
	EventTypeAccountBlocked    EventType = "AccountBlocked"
	EventTypeAccountClosed     EventType = "AccountClosed"
	EventTypeMoneyDeposited    EventType = "MoneyDeposited"
	EventTypeMoneyWithdrawn    EventType = "MoneyWithdrawn"
)

// Routing keys, one per event kind.
const (
	RoutingKeyTransferRequested = "transfer.requested"
	RoutingKeyTransferCompleted = "transfer.completed"
	RoutingKeyTransferFailed    = "transfer.failed"
	RoutingKeyAccountCreated    = "account.created"
	RoutingKeyAccountApproved   = "account.approved"
	RoutingKeyAccountRejected   = "account.rejected"
	RoutingKeyAccountBlocked    = "account.blocked"
	RoutingKeyAccountClosed     = "account.closed"
	RoutingKeyMoneyDeposited    = "money.deposited"
	RoutingKeyMoneyWithdrawn    = "money.withdrawn"
)

// UnknownTransferID is used when a command arrives without a transfer_id.
const UnknownTransferID = "unknown"

// Event is anything that can be published on the event channel.
type Event interface {
	Envelope() EventEnvelope
	RoutingKey() string
}

// EventEnvelope is embedded in every event payload.
type EventEnvelope struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	EventType  EventType `json:"event_type"`
}

func (e EventEnvelope) Envelope() EventEnvelope {
	return e
}

// NewEnvelope builds an envelope for an event of type t.
func NewEnvelope(eventID string, t EventType, at time.Time) EventEnvelope {
	return EventEnvelope{EventID: eventID, OccurredAt: at.UTC(), EventType: t}
}

// TransferDetails are the fields shared by the transfer command and its outcomes.
type TransferDetails struct {
	TransferID  string `json:"transfer_id"`
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
}

// TransferRequested is the command consumed by the transfer worker.
type TransferRequested struct {
	EventEnvelope
	TransferDetails
}

func (TransferRequested) RoutingKey() string { return RoutingKeyTransferRequested }

// TransferCompleted is emitted when both accounts were persisted.
type TransferCompleted struct {
	EventEnvelope
	TransferDetails
}

func (TransferCompleted) RoutingKey() string { return RoutingKeyTransferCompleted }

// TransferFailed is emitted for every transfer that did not complete.
type TransferFailed struct {
	EventEnvelope
	TransferDetails
	Reason string `json:"reason"`
}

func (TransferFailed) RoutingKey() string { return RoutingKeyTransferFailed }

type AccountCreated struct {
	EventEnvelope
	AccountNumber  string `json:"account_number"`
	HolderName     string `json:"holder_name"`
	CPF            string `json:"cpf"`
	InitialBalance string `json:"initial_balance"`
}

func (AccountCreated) RoutingKey() string { return RoutingKeyAccountCreated }

type AccountApproved struct {
	EventEnvelope
	AccountNumber string `json:"account_number"`
}

func (AccountApproved) RoutingKey() string { return RoutingKeyAccountApproved }

type AccountRejected struct {
	EventEnvelope
	AccountNumber string `json:"account_number"`
	Reason        string `json:"reason"`
}

func (AccountRejected) RoutingKey() string { return RoutingKeyAccountRejected }

type AccountBlocked struct {
	EventEnvelope
	AccountNumber string `json:"account_number"`
	Reason        string `json:"reason"`
}

func (AccountBlocked) RoutingKey() string { return RoutingKeyAccountBlocked }

type AccountClosed struct {
	EventEnvelope
	AccountNumber string `json:"account_number"`
}

func (AccountClosed) RoutingKey() string { return RoutingKeyAccountClosed }

// MoneyMoved carries the fields shared by deposits and withdrawals.
type MoneyMoved struct {
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	NewBalance    string `json:"new_balance"`
}

type MoneyDeposited struct {
	EventEnvelope
	MoneyMoved
}

func (MoneyDeposited) RoutingKey() string { return RoutingKeyMoneyDeposited }

type MoneyWithdrawn struct {
	EventEnvelope
	MoneyMoved
}

func (MoneyWithdrawn) RoutingKey() string { return RoutingKeyMoneyWithdrawn }

// DecodeTransferRequested parses a transfer command. It is lenient: on any
// problem it still returns every field it could recover, with the transfer id
// defaulting to UnknownTransferID and the amount to "0", together with an
// error wrapping ErrMalformedCommand.
func DecodeTransferRequested(body []byte) (TransferRequested, error) {
	cmd := TransferRequested{
		EventEnvelope: EventEnvelope{EventType: EventTypeTransferRequested},
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		cmd.TransferID = UnknownTransferID
		cmd.Amount = "0"

		return cmd, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	cmd.EventID = rawString(raw["event_id"])
	cmd.TransferID = rawString(raw["transfer_id"])
	cmd.FromAccount = rawString(raw["from_account"])
	cmd.ToAccount = rawString(raw["to_account"])
	cmd.Amount = rawString(raw["amount"])

	if at := rawString(raw["occurred_at"]); at != "" {
		if ts, err := time.Parse(time.RFC3339Nano, at); err == nil {
			cmd.OccurredAt = ts
		}
	}

	var missing []string
	if cmd.TransferID == "" {
		cmd.TransferID = UnknownTransferID
		missing = append(missing, "transfer_id")
	}

	if cmd.FromAccount == "" {
		missing = append(missing, "from_account")
	}

	if cmd.ToAccount == "" {
		missing = append(missing, "to_account")
	}

	if cmd.Amount == "" {
		cmd.Amount = "0"
		missing = append(missing, "amount")
	}

	if len(missing) > 0 {
		return cmd, fmt.Errorf("%w: missing %v", ErrMalformedCommand, missing)
	}

	return cmd, nil
}

// rawString accepts both JSON strings and JSON numbers.
func rawString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}

	return ""
}
