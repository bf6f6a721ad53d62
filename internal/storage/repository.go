package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/cleberMargarida/fora-financial/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a company does not exist in storage.
var ErrNotFound = errors.New("company not found")

// CompanyRepository persists Company aggregates in SQLite. A company and all
// of its incomes are always written together in one transaction.
type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(dbPath string) (*CompanyRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &CompanyRepository{db: db}, nil
}

func (r *CompanyRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ExistsByCIK reports whether a company with the external identifier is
// already persisted.
func (r *CompanyRepository) ExistsByCIK(ctx context.Context, cik int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM companies WHERE cik = ?", cik).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check company by cik: %w", err)
	}
	return true, nil
}

// Add persists a new aggregate and assigns its database id.
func (r *CompanyRepository) Add(ctx context.Context, c *core.Company) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO companies (cik, name) VALUES (?, ?)", c.CIK, c.Name)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read company id: %w", err)
	}
	c.ID = id

	if err := insertIncomes(ctx, tx, c); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit company: %w", err)
	}

	slog.InfoContext(ctx, "Company saved",
		"id", c.ID, "cik", c.CIK, "name", c.Name, "incomes", len(c.Incomes()))
	return nil
}

// Update rewrites an existing aggregate, replacing its income set.
func (r *CompanyRepository) Update(ctx context.Context, c *core.Company) error {
	if c.ID == 0 {
		return fmt.Errorf("update company: %w", ErrNotFound)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE companies SET cik = ?, name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		c.CIK, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update company %d: %w", c.ID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM incomes WHERE company_id = ?", c.ID); err != nil {
		return fmt.Errorf("clear incomes: %w", err)
	}
	if err := insertIncomes(ctx, tx, c); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit company update: %w", err)
	}
	return nil
}

// Delete removes a company and, via cascade, its incomes.
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete company %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetByID loads one aggregate with all its incomes.
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*core.Company, error) {
	companies, err := r.queryAggregates(ctx, "WHERE c.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, fmt.Errorf("get company %d: %w", id, ErrNotFound)
	}
	return companies[0], nil
}

// GetAll loads every aggregate, optionally filtered to names starting with
// the given prefix (case-sensitive), ordered by id ascending.
func (r *CompanyRepository) GetAll(ctx context.Context, namePrefix string) ([]*core.Company, error) {
	if namePrefix == "" {
		return r.queryAggregates(ctx, "")
	}
	// substr keeps the prefix match case-sensitive; LIKE folds ASCII case.
	return r.queryAggregates(ctx, "WHERE substr(c.name, 1, ?) = ?",
		utf8.RuneCountInString(namePrefix), namePrefix)
}

func (r *CompanyRepository) queryAggregates(ctx context.Context, where string, args ...any) ([]*core.Company, error) {
	query := `
		SELECT c.id, c.cik, c.name, i.year, i.amount, i.currency
		FROM companies c
		LEFT JOIN incomes i ON i.company_id = c.id ` + where + `
		ORDER BY c.id, i.year`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var (
		out     []*core.Company
		current *core.Company
	)
	for rows.Next() {
		var (
			id, cik  int64
			name     string
			year     sql.NullInt64
			amount   sql.NullString
			currency sql.NullString
		)
		if err := rows.Scan(&id, &cik, &name, &year, &amount, &currency); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}

		if current == nil || current.ID != id {
			c, err := core.NewCompany(cik, name)
			if err != nil {
				return nil, fmt.Errorf("rebuild company %d: %w", id, err)
			}
			c.ID = id
			current = c
			out = append(out, c)
		}

		if !year.Valid {
			continue // company without incomes
		}
		value, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount.String, err)
		}
		inc, err := core.NewIncome(int(year.Int64), core.NewMoney(value, core.Currency(currency.String)))
		if err != nil {
			return nil, fmt.Errorf("rebuild income for company %d: %w", id, err)
		}
		current.AddIncome(inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}
	return out, nil
}

func insertIncomes(ctx context.Context, tx *sql.Tx, c *core.Company) error {
	for _, inc := range c.Incomes() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO incomes (company_id, year, amount, currency) VALUES (?, ?, ?, ?)",
			c.ID, inc.Year, inc.Amount.Amount.String(), string(inc.Amount.Currency)); err != nil {
			return fmt.Errorf("insert income year %d: %w", inc.Year, err)
		}
	}
	return nil
}
