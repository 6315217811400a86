// Package schema owns the DDL for the six museum tables. Tables are
// described declaratively and rendered per dialect, so the SQLite and MySQL
// stores always agree on columns, defaults and foreign keys.
package schema

import "github.com/iliyamo/mufant-museum/internal/model"

// Managed table names.
const (
	TableUsers      = "users"
	TableActivities = "museum_activities"
	TableCarts      = "carts"
	TableTickets    = "tickets"
	TableCoupons    = "coupons"
	TablePayments   = "payments"
)

// kind is the logical column type; each dialect maps it to a concrete type.
type kind int

const (
	kindID        kind = iota // auto-increment surrogate key
	kindRef                   // integer reference to another table's id
	kindKey                   // short text that may be unique or referenced
	kindText                  // free text
	kindTimestamp             // date and time
	kindReal                  // floating point amount
	kindInteger               // counter
	kindBool                  // flag
)

// Column describes one column of a managed table.
type Column struct {
	Name    string
	kind    kind
	NotNull bool
	Unique  bool
	Default string // raw SQL literal, empty for none
}

// ForeignKey declares a reference enforced by the store.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table is the declarative description of a managed table.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

func id() Column { return Column{Name: "id", kind: kindID} }

func timestamps() []Column {
	return []Column{
		{Name: "created_at", kind: kindTimestamp, Default: "CURRENT_TIMESTAMP"},
		{Name: "updated_at", kind: kindTimestamp, Default: "CURRENT_TIMESTAMP"},
	}
}

func cols(cs ...Column) []Column {
	out := append([]Column{id()}, cs...)
	return append(out, timestamps()...)
}

// tables lists every managed table parents first.
var tables = []Table{
	{
		Name: TableUsers,
		Columns: cols(
			Column{Name: "username", kind: kindKey, Unique: true, NotNull: true},
			Column{Name: "email", kind: kindKey, Unique: true, NotNull: true},
			Column{Name: "password_hash", kind: kindText, NotNull: true},
		),
	},
	{
		Name: TableActivities,
		Columns: cols(
			Column{Name: "name", kind: kindText, NotNull: true},
			Column{Name: "type", kind: kindKey, NotNull: true},
			Column{Name: "description", kind: kindText},
			Column{Name: "start_date", kind: kindTimestamp},
			Column{Name: "end_date", kind: kindTimestamp},
			Column{Name: "location", kind: kindText, Default: "'" + model.DefaultVenue + "'"},
			Column{Name: "notes", kind: kindText},
			Column{Name: "price", kind: kindReal, Default: "0.0"},
			Column{Name: "image_path", kind: kindText},
		),
	},
	{
		Name: TableCarts,
		Columns: cols(
			Column{Name: "username", kind: kindKey, NotNull: true},
		),
		ForeignKeys: []ForeignKey{
			{Column: "username", RefTable: TableUsers, RefColumn: "username"},
		},
	},
	{
		Name: TableTickets,
		Columns: cols(
			Column{Name: "cart_id", kind: kindRef, NotNull: true},
			Column{Name: "museum_activity_id", kind: kindRef, NotNull: true},
			Column{Name: "quantity", kind: kindInteger, Default: "1"},
			Column{Name: "charging_rate", kind: kindReal, Default: "0.0"},
		),
		ForeignKeys: []ForeignKey{
			{Column: "cart_id", RefTable: TableCarts, RefColumn: "id"},
			{Column: "museum_activity_id", RefTable: TableActivities, RefColumn: "id"},
		},
	},
	{
		Name: TableCoupons,
		Columns: cols(
			Column{Name: "code", kind: kindKey, Unique: true, NotNull: true},
			Column{Name: "discount_percentage", kind: kindReal, Default: "0.0"},
			Column{Name: "is_active", kind: kindBool, Default: "TRUE"},
			Column{Name: "expires_at", kind: kindTimestamp},
		),
	},
	{
		Name: TablePayments,
		Columns: cols(
			Column{Name: "username", kind: kindKey, NotNull: true},
			Column{Name: "amount", kind: kindReal, NotNull: true},
			Column{Name: "currency", kind: kindKey, Default: "'" + model.DefaultCurrency + "'"},
			Column{Name: "status", kind: kindKey, Default: "'" + model.PaymentPending + "'"},
			Column{Name: "transaction_id", kind: kindKey},
			Column{Name: "payment_method", kind: kindKey},
		),
		ForeignKeys: []ForeignKey{
			{Column: "username", RefTable: TableUsers, RefColumn: "username"},
		},
	},
}

// Tables returns the managed table descriptions, parents first.
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// TableNames returns the managed table names, parents first.
func TableNames() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// IsManaged reports whether name is one of the six managed tables.
func IsManaged(name string) bool {
	for _, t := range tables {
		if t.Name == name {
			return true
		}
	}
	return false
}
