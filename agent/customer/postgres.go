// Package customer provides the customer-data collaborator consumed by
// the support agent: a Postgres-backed directory for deployments and a
// seeded in-memory directory for development and tests.
package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

const DefaultTransactionLimit = 5

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

// PostgresDirectory reads customer profiles and transactions from
// Postgres via bun.
type PostgresDirectory struct {
	db *bun.DB
}

type customerRow struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	UserID          string   `bun:"user_id,pk"`
	Name            string   `bun:"name"`
	Email           string   `bun:"email"`
	AccountStatus   string   `bun:"account_status"`
	Products        []string `bun:"products,array"`
	Balance         float64  `bun:"balance"`
	DailyLimit      float64  `bun:"daily_limit"`
	MonthlyLimit    float64  `bun:"monthly_limit"`
	LastTransaction string   `bun:"last_transaction"`
}

type transactionRow struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID          string  `bun:"id,pk"`
	UserID      string  `bun:"user_id"`
	Date        string  `bun:"date"`
	Type        string  `bun:"type"`
	Amount      float64 `bun:"amount"`
	Description string  `bun:"description"`
}

func NewPostgresDirectory(cfg PostgresConfig) (*PostgresDirectory, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("customer directory dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresDirectory{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}

func (d *PostgresDirectory) GetCustomerInfo(ctx context.Context, userID string) (*contractx.CustomerRecord, error) {
	var row customerRow
	err := d.db.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %s", contractx.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", userID, err)
	}
	return row.toRecord(), nil
}

func (d *PostgresDirectory) CheckAccountStatus(ctx context.Context, userID string) (*contractx.AccountStatus, error) {
	var row customerRow
	err := d.db.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %s", contractx.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("check account status %s: %w", userID, err)
	}
	return accountStatusFor(row.toRecord(), row.LastTransaction), nil
}

func (d *PostgresDirectory) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]contractx.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}

	var rows []transactionRow
	err := d.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions %s: %w", userID, err)
	}

	txns := make([]contractx.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = contractx.Transaction{
			ID:          r.ID,
			Date:        r.Date,
			Type:        r.Type,
			Amount:      r.Amount,
			Description: r.Description,
		}
	}
	return txns, nil
}

func (r customerRow) toRecord() *contractx.CustomerRecord {
	return &contractx.CustomerRecord{
		UserID:        r.UserID,
		Name:          r.Name,
		Email:         r.Email,
		AccountStatus: r.AccountStatus,
		Products:      r.Products,
		Balance:       r.Balance,
		DailyLimit:    r.DailyLimit,
		MonthlyLimit:  r.MonthlyLimit,
	}
}

// accountStatusFor derives account issues from the record itself. The
// check is deterministic: an inactive account is the one condition the
// directory can assert without guessing.
func accountStatusFor(rec *contractx.CustomerRecord, lastTransaction string) *contractx.AccountStatus {
	status := &contractx.AccountStatus{
		Status:          rec.AccountStatus,
		LastTransaction: lastTransaction,
	}
	if rec.AccountStatus != "active" {
		status.Issues = append(status.Issues, "Account is not active")
	}
	return status
}
