package customer

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

func TestSeededDirectoryLookup(t *testing.T) {
	t.Parallel()

	d := NewSeededDirectory()
	rec, err := d.GetCustomerInfo(context.Background(), "client789")
	if err != nil {
		t.Fatalf("GetCustomerInfo() error = %v", err)
	}
	if rec.Name != "João Silva" {
		t.Fatalf("unexpected name: %q", rec.Name)
	}
	if rec.Balance != 1250.50 || rec.DailyLimit != 5000.00 {
		t.Fatalf("unexpected balance/limits: %#v", rec)
	}
}

func TestLookupMissIsNotFound(t *testing.T) {
	t.Parallel()

	d := NewSeededDirectory()
	_, err := d.GetCustomerInfo(context.Background(), "ghost")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = d.CheckAccountStatus(context.Background(), "ghost")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountStatusIssues(t *testing.T) {
	t.Parallel()

	d := NewSeededDirectory()
	status, err := d.CheckAccountStatus(context.Background(), "client789")
	if err != nil {
		t.Fatalf("CheckAccountStatus() error = %v", err)
	}
	if status.Status != "active" || len(status.Issues) != 0 {
		t.Fatalf("active account must report no issues: %#v", status)
	}

	d.Put(contractx.CustomerRecord{UserID: "blocked1", AccountStatus: "blocked"}, "")
	status, err = d.CheckAccountStatus(context.Background(), "blocked1")
	if err != nil {
		t.Fatalf("CheckAccountStatus() error = %v", err)
	}
	if len(status.Issues) != 1 || status.Issues[0] != "Account is not active" {
		t.Fatalf("unexpected issues: %#v", status.Issues)
	}
}

func TestRecentTransactionsOrderAndLimit(t *testing.T) {
	t.Parallel()

	d := NewSeededDirectory()
	txns, err := d.GetRecentTransactions(context.Background(), "client789", 2)
	if err != nil {
		t.Fatalf("GetRecentTransactions() error = %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].Date != "2024-01-15" || txns[1].Date != "2024-01-14" {
		t.Fatalf("transactions not in descending date order: %#v", txns)
	}

	all, err := d.GetRecentTransactions(context.Background(), "client789", 0)
	if err != nil {
		t.Fatalf("GetRecentTransactions() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("default limit should return all seeded transactions, got %d", len(all))
	}
}
