package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewJournalEntryBalanced(t *testing.T) {
	storeID := uuid.New()
	e, err := NewJournalEntry(storeID, "Payment for ORD-20260829-0001 via cash", "ORD-20260829-0001", []JournalLine{
		{AccountCode: AccountCodeCash, Debit: 150},
		{AccountCode: AccountCodeReceivable, Credit: 150},
	})
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}
	if e.StoreID != storeID || len(e.Lines) != 2 {
		t.Fatalf("entry wrong: %+v", e)
	}
	for _, l := range e.Lines {
		if l.ID == uuid.Nil || l.EntryID != e.ID {
			t.Fatalf("line not linked to entry: %+v", l)
		}
	}
}

func TestNewJournalEntryRejectsImbalance(t *testing.T) {
	_, err := NewJournalEntry(uuid.New(), "m", "r", []JournalLine{
		{AccountCode: "1000", Debit: 100},
		{AccountCode: "1200", Credit: 90},
	})
	if !errors.Is(err, ErrUnbalancedEntry) {
		t.Fatalf("err = %v, want ErrUnbalancedEntry", err)
	}
}

func TestNewJournalEntryRejectsSingleLine(t *testing.T) {
	_, err := NewJournalEntry(uuid.New(), "m", "r", []JournalLine{{AccountCode: "1000", Debit: 10}})
	if !errors.Is(err, ErrUnbalancedEntry) {
		t.Fatalf("err = %v, want ErrUnbalancedEntry", err)
	}
}

func TestNewJournalEntryRejectsMixedLine(t *testing.T) {
	_, err := NewJournalEntry(uuid.New(), "m", "r", []JournalLine{
		{AccountCode: "1000", Debit: 10, Credit: 10},
		{AccountCode: "1200"},
	})
	if !errors.Is(err, ErrUnbalancedEntry) {
		t.Fatalf("err = %v, want ErrUnbalancedEntry", err)
	}
}

func TestNewJournalEntryToleratesSubCentDrift(t *testing.T) {
	_, err := NewJournalEntry(uuid.New(), "m", "r", []JournalLine{
		{AccountCode: "1000", Debit: 33.335},
		{AccountCode: "1200", Credit: 33.33},
	})
	if err != nil {
		t.Fatalf("sub-cent drift rejected: %v", err)
	}
}
