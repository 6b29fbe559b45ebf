package customer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

// MemoryDirectory is an in-memory customer directory. The seeded
// variant carries the well-known development customer so the full
// pipeline works without a database.
type MemoryDirectory struct {
	mu           sync.RWMutex
	customers    map[string]contractx.CustomerRecord
	lastTxn      map[string]string
	transactions map[string][]contractx.Transaction
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		customers:    map[string]contractx.CustomerRecord{},
		lastTxn:      map[string]string{},
		transactions: map[string][]contractx.Transaction{},
	}
}

// NewSeededDirectory returns a directory pre-loaded with the
// development customer client789 and its transaction history.
func NewSeededDirectory() *MemoryDirectory {
	d := NewMemoryDirectory()
	d.Put(contractx.CustomerRecord{
		UserID:        "client789",
		Name:          "João Silva",
		Email:         "joao.silva@email.com",
		AccountStatus: "active",
		Products:      []string{"maquininha_smart", "conta_digital"},
		Balance:       1250.50,
		DailyLimit:    5000.00,
		MonthlyLimit:  50000.00,
	}, "2024-01-15")
	d.PutTransactions("client789", []contractx.Transaction{
		{ID: "txn_001", Date: "2024-01-15", Type: "payment_received", Amount: 150.00, Description: "Venda - Cartão de Crédito"},
		{ID: "txn_002", Date: "2024-01-14", Type: "transfer", Amount: -50.00, Description: "Transferência PIX"},
		{ID: "txn_003", Date: "2024-01-13", Type: "payment_received", Amount: 300.00, Description: "Venda - Maquininha"},
	})
	return d
}

// Put stores or replaces a customer record.
func (d *MemoryDirectory) Put(rec contractx.CustomerRecord, lastTransaction string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[rec.UserID] = rec
	d.lastTxn[rec.UserID] = lastTransaction
}

// PutTransactions replaces the transaction history of a customer.
func (d *MemoryDirectory) PutTransactions(userID string, txns []contractx.Transaction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transactions[userID] = append([]contractx.Transaction(nil), txns...)
}

func (d *MemoryDirectory) GetCustomerInfo(_ context.Context, userID string) (*contractx.CustomerRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.customers[userID]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", contractx.ErrNotFound, userID)
	}
	cp := rec
	return &cp, nil
}

func (d *MemoryDirectory) CheckAccountStatus(_ context.Context, userID string) (*contractx.AccountStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.customers[userID]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", contractx.ErrNotFound, userID)
	}
	return accountStatusFor(&rec, d.lastTxn[userID]), nil
}

func (d *MemoryDirectory) GetRecentTransactions(_ context.Context, userID string, limit int) ([]contractx.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	txns := append([]contractx.Transaction(nil), d.transactions[userID]...)
	sort.Slice(txns, func(i, j int) bool { return txns[i].Date > txns[j].Date })
	if limit < len(txns) {
		txns = txns[:limit]
	}
	return txns, nil
}
