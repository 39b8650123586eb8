package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

const opTimeout = 5 * time.Second

type receiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository создаёт PostgreSQL-реализацию ReceiptRepository.
func NewReceiptRepository(store *Store) domain.ReceiptRepository {
	return &receiptRepository{db: store.DB()}
}

func (r *receiptRepository) Save(ctx context.Context, receipt domain.Receipt) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (
			id, session_id, restaurant_id, total_amount, confirmation, submitted_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		receipt.ID, receipt.SessionID, nullInt64(receipt.RestaurantID),
		receipt.TotalAmount, receipt.Confirmation, receipt.SubmittedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReceiptExists
		}
		return fmt.Errorf("insert receipt: %w", err)
	}

	for i, line := range receipt.Lines {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO receipt_lines (
				receipt_id, position, product_id, name, description, image, category, price, quantity
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			receipt.ID, i, line.Product.ID, line.Product.Name, line.Product.Description,
			line.Product.Image, line.Product.Category, nullInt64(line.Product.Price), line.Quantity,
		); err != nil {
			return fmt.Errorf("insert receipt line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit receipt: %w", err)
	}

	return nil
}

func (r *receiptRepository) Get(ctx context.Context, id string) (domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, restaurant_id, total_amount, confirmation, submitted_at
		FROM receipts
		WHERE id = $1
	`, id)

	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Receipt{}, domain.ErrReceiptNotFound
		}
		return domain.Receipt{}, fmt.Errorf("select receipt: %w", err)
	}

	lines, err := r.loadLines(ctx, receipt.ID)
	if err != nil {
		return domain.Receipt{}, err
	}
	receipt.Lines = lines

	return receipt, nil
}

func (r *receiptRepository) List(ctx context.Context, limit int) ([]domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT id, session_id, restaurant_id, total_amount, confirmation, submitted_at
		FROM receipts
		ORDER BY submitted_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]domain.Receipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt rows: %w", err)
	}

	// Строки дочитываем после закрытия курсора, чтобы не держать два запроса на одном соединении.
	for i := range receipts {
		lines, err := r.loadLines(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Lines = lines
	}

	return receipts, nil
}

func (r *receiptRepository) loadLines(ctx context.Context, receiptID string) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, description, image, category, price, quantity
		FROM receipt_lines
		WHERE receipt_id = $1
		ORDER BY position ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("select receipt lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var (
			line  domain.CartLine
			price sql.NullInt64
		)
		if err := rows.Scan(
			&line.Product.ID, &line.Product.Name, &line.Product.Description,
			&line.Product.Image, &line.Product.Category, &price, &line.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan receipt line: %w", err)
		}
		if price.Valid {
			line.Product.Price = domain.Price(price.Int64)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt lines: %w", err)
	}

	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (domain.Receipt, error) {
	var (
		receipt      domain.Receipt
		restaurantID sql.NullInt64
	)
	if err := row.Scan(
		&receipt.ID, &receipt.SessionID, &restaurantID,
		&receipt.TotalAmount, &receipt.Confirmation, &receipt.SubmittedAt,
	); err != nil {
		return domain.Receipt{}, err
	}
	if restaurantID.Valid {
		id := restaurantID.Int64
		receipt.RestaurantID = &id
	}
	receipt.SubmittedAt = receipt.SubmittedAt.UTC()
	return receipt, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var _ domain.ReceiptRepository = (*receiptRepository)(nil)
