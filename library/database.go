package library

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// LoanArchive keeps every loan, open or returned, in an in-memory SQLite
// database that lives as long as the process.
type LoanArchive struct {
	db     *sql.DB
	logger *slog.Logger

	recordStmt  *sql.Stmt
	markStmt    *sql.Stmt
	forUserStmt *sql.Stmt
	countStmt   *sql.Stmt
}

// NewLoanArchive opens a private in-memory database, applies the schema and
// prepares statements.
func NewLoanArchive(logger *slog.Logger) (*LoanArchive, error) {
	if logger == nil {
		logger = discardLogger()
	}

	// Named shared-cache memory DB so every pooled connection sees the same data.
	dsn := fmt.Sprintf("file:loans-%s?mode=memory&cache=shared&_busy_timeout=5000&_foreign_keys=1", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	archive := &LoanArchive{db: db, logger: logger}
	if err := archive.prepareStatements(); err != nil {
		archive.Close()
		return nil, err
	}
	return archive, nil
}

// Close releases prepared statements and drops the database.
func (a *LoanArchive) Close() error {
	for _, stmt := range []*sql.Stmt{a.recordStmt, a.markStmt, a.forUserStmt, a.countStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return a.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS loans (
            id TEXT PRIMARY KEY,
            user_id INTEGER NOT NULL,
            item_id INTEGER NOT NULL,
            item_title TEXT NOT NULL,
            loan_date DATETIME NOT NULL,
            due_date DATETIME NOT NULL,
            return_time DATETIME
        );`,
		`CREATE INDEX IF NOT EXISTS idx_loans_user ON loans(user_id, loan_date);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (a *LoanArchive) prepareStatements() error {
	var err error
	if a.recordStmt, err = a.db.Prepare(`INSERT INTO loans(id,user_id,item_id,item_title,loan_date,due_date) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	if a.markStmt, err = a.db.Prepare(`UPDATE loans SET return_time=? WHERE id=? AND return_time IS NULL`); err != nil {
		return err
	}
	if a.forUserStmt, err = a.db.Prepare(`SELECT id,user_id,item_id,item_title,loan_date,due_date,return_time FROM loans WHERE user_id=? ORDER BY loan_date, rowid`); err != nil {
		return err
	}
	if a.countStmt, err = a.db.Prepare(`SELECT COUNT(*) FROM loans WHERE return_time IS NULL`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loan records
// ---------------------------------------------------------------------------

// Record stores a newly started loan.
func (a *LoanArchive) Record(loan Loan) error {
	_, err := a.recordStmt.Exec(loan.ID.String(), loan.UserID, loan.ItemID, loan.ItemTitle, loan.LoanDate.UTC(), loan.DueDate.UTC())
	return err
}

// MarkReturned closes the loan with the given id.
func (a *LoanArchive) MarkReturned(loanID uuid.UUID, at time.Time) error {
	res, err := a.markStmt.Exec(at.UTC(), loanID.String())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no open loan %s", loanID)
	}
	return nil
}

// ForUser returns the user's loans, oldest first.
func (a *LoanArchive) ForUser(userID int) ([]LoanRecord, error) {
	rows, err := a.forUserStmt.Query(userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LoanRecord
	for rows.Next() {
		var (
			r        LoanRecord
			id       string
			returned sql.NullTime
		)
		if err := rows.Scan(&id, &r.UserID, &r.ItemID, &r.ItemTitle, &r.LoanDate, &r.DueDate, &returned); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse loan id: %w", err)
		}
		if returned.Valid {
			t := returned.Time
			r.ReturnedAt = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountActive reports how many archived loans have not been returned.
func (a *LoanArchive) CountActive() (int, error) {
	var n int
	err := a.countStmt.QueryRow().Scan(&n)
	return n, err
}

// LoanStarted implements LoanObserver.
func (a *LoanArchive) LoanStarted(loan Loan) {
	if err := a.Record(loan); err != nil {
		a.logger.Error("archive loan", "loan_id", loan.ID, "err", err)
	}
}

// LoanEnded implements LoanObserver.
func (a *LoanArchive) LoanEnded(loan Loan, returnedAt time.Time) {
	if err := a.MarkReturned(loan.ID, returnedAt); err != nil {
		a.logger.Error("archive return", "loan_id", loan.ID, "err", err)
	}
}
