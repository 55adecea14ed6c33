package domain

import (
	"errors"
)

// InstrumentKind represents the family of a financial instrument
type InstrumentKind string

const (
	InstrumentKindDeposit InstrumentKind = "DEPOSIT"
	InstrumentKindBond    InstrumentKind = "BOND"
	InstrumentKindEquity  InstrumentKind = "EQUITY"
	InstrumentKindIndex   InstrumentKind = "INDEX"
)

// Instrument represents a named instrument whose yearly returns can be allocated to
// The ID doubles as the allocation bucket ID and the return series key
type Instrument struct {
	ID       string
	Name     string
	Kind     InstrumentKind
	Currency string // ISO code of the currency the returns are expressed in
}

// Validate ensures the instrument adheres to domain rules
// Returns an error if validation fails
func (i *Instrument) Validate() error {
	if i.ID == "" {
		return errors.New("instrument id cannot be empty")
	}

	if i.Name == "" {
		return errors.New("instrument name cannot be empty")
	}

	switch i.Kind {
	case InstrumentKindDeposit, InstrumentKindBond, InstrumentKindEquity, InstrumentKindIndex:
	default:
		return errors.New("instrument kind must be DEPOSIT, BOND, EQUITY, or INDEX")
	}

	return nil
}
