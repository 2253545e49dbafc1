package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tables whose writes are announced.
const (
	TableTransactions Table = "transactions"
	TableCategories   Table = "categories"
	TableBudgets      Table = "budgets"
)

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

type (
	Table string
	Op    string
)

// ChangeMessage announces one committed write. It carries ids only; consumers
// read current state from the store. Year and Month name the calendar month
// touched by a transaction write, when known.
type ChangeMessage struct {
	MessageID string    `json:"message_id"`
	Table     Table     `json:"table"`
	Op        Op        `json:"op"`
	EntityID  int64     `json:"entity_id"`
	Year      int       `json:"year,omitempty"`
	Month     int       `json:"month,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a message with a fresh random id.
func NewChangeMessage(table Table, op Op, entityID int64) *ChangeMessage {
	return &ChangeMessage{
		MessageID: uuid.NewString(),
		Table:     table,
		Op:        op,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// ForMonth records the calendar month of t in loc.
func (m *ChangeMessage) ForMonth(t time.Time, loc *time.Location) *ChangeMessage {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	m.Year = local.Year()
	m.Month = int(local.Month())
	return m
}

// HasMonth reports whether Year and Month were set.
func (m *ChangeMessage) HasMonth() bool {
	return m.Year > 0 && m.Month >= 1 && m.Month <= 12
}

func (m *ChangeMessage) Validate() error {
	if _, err := uuid.Parse(m.MessageID); err != nil {
		return fmt.Errorf("invalid message id %q: %w", m.MessageID, err)
	}
	switch m.Table {
	case TableTransactions, TableCategories, TableBudgets:
	default:
		return fmt.Errorf("unknown table %q", m.Table)
	}
	switch m.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	if m.EntityID <= 0 {
		return errors.New("missing entity id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and validates a message.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
