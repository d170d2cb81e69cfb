package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"masapos/backend/internal/domain"
	"masapos/backend/internal/store"
	"masapos/backend/internal/xid"
	"masapos/backend/pkg/logger"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS sales (
	seq             BIGSERIAL UNIQUE,
	id              TEXT PRIMARY KEY,
	table_name      TEXT NOT NULL DEFAULT '',
	table_type      TEXT NOT NULL DEFAULT '',
	sale_date       TEXT NOT NULL DEFAULT '',
	sale_time       TEXT NOT NULL DEFAULT '',
	payment_method  TEXT NOT NULL DEFAULT '',
	total_amount    NUMERIC(14,2) NOT NULL DEFAULT 0,
	items           TEXT NOT NULL DEFAULT '',
	has_items_array BOOLEAN NOT NULL DEFAULT false,
	staff_name      TEXT NOT NULL DEFAULT '',
	is_expense      BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sale_items (
	sale_id      TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	position     INT NOT NULL,
	product_id   TEXT NOT NULL DEFAULT '',
	product_name TEXT NOT NULL,
	price        NUMERIC(14,2) NOT NULL DEFAULT 0,
	quantity     INT NOT NULL,
	is_gift      BOOLEAN NOT NULL DEFAULT false,
	staff_name   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (sale_id, position)
);

CREATE TABLE IF NOT EXISTS app_users (
	username   TEXT PRIMARY KEY,
	password   TEXT NOT NULL,
	role       TEXT NOT NULL,
	active     BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables the store needs when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction and rolls back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// ListSales returns every record in insertion order with its structured lines.
func (s *Store) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, table_type, sale_date, sale_time, payment_method,
		       total_amount, items, has_items_array, staff_name, is_expense
		FROM sales
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.SaleRecord, 0, 256)
	index := make(map[string]int, 256)
	for rows.Next() {
		record, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		index[record.ID] = len(records)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, product_id, product_name, price, quantity, is_gift, staff_name
		FROM sale_items
		ORDER BY sale_id, position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		saleID, item, err := scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		idx, ok := index[saleID]
		if !ok {
			continue
		}
		records[idx].ItemsArray = append(records[idx].ItemsArray, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.SaleRecord, error) {
	id = strings.TrimSpace(id)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, table_name, table_type, sale_date, sale_time, payment_method,
		       total_amount, items, has_items_array, staff_name, is_expense
		FROM sales
		WHERE id = $1
	`, id)
	record, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, product_id, product_name, price, quantity, is_gift, staff_name
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		_, item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		record.ItemsArray = append(record.ItemsArray, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) CreateSale(ctx context.Context, record domain.SaleRecord) (*domain.SaleRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		record.ID = xid.New("sale")
	}
	if record.TotalAmount.IsNegative() {
		return nil, store.ErrInvalidRecord
	}
	for _, item := range record.ItemsArray {
		if item.Quantity < 0 || item.Price.IsNegative() || strings.TrimSpace(item.ProductName) == "" {
			return nil, store.ErrInvalidRecord
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sales (
				id, table_name, table_type, sale_date, sale_time, payment_method,
				total_amount, items, has_items_array, staff_name, is_expense, created_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		`, record.ID, record.TableName, record.TableType, record.SaleDate, record.SaleTime,
			record.PaymentMethod, record.TotalAmount, record.Items, record.HasItemsArray(),
			record.StaffName, record.IsExpense)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrInvalidRecord
			}
			return err
		}

		for pos, item := range record.ItemsArray {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sale_items (sale_id, position, product_id, product_name, price, quantity, is_gift, staff_name)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			`, record.ID, pos, item.ProductID, item.ProductName, item.Price, item.Quantity, item.IsGift, item.StaffName); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteSale removes one record; its lines go with it through ON DELETE CASCADE.
func (s *Store) DeleteSale(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRecord
	}
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidRecord
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSale leaves ItemsArray as an empty non-nil slice for structured rows so
// structured records without lines are not mistaken for legacy ones.
func scanSale(row rowScanner) (domain.SaleRecord, error) {
	var record domain.SaleRecord
	var structured bool
	if err := row.Scan(
		&record.ID, &record.TableName, &record.TableType, &record.SaleDate, &record.SaleTime,
		&record.PaymentMethod, &record.TotalAmount, &record.Items, &structured,
		&record.StaffName, &record.IsExpense,
	); err != nil {
		return domain.SaleRecord{}, err
	}
	if structured {
		record.ItemsArray = []domain.LineItem{}
	}
	return record, nil
}

func scanItem(row rowScanner) (string, domain.LineItem, error) {
	var saleID string
	var item domain.LineItem
	if err := row.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Price, &item.Quantity, &item.IsGift, &item.StaffName); err != nil {
		return "", domain.LineItem{}, err
	}
	return saleID, item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
