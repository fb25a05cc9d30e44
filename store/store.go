package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jeffsasaki/storefront/models"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// validID reports whether id can name a SERIAL row at all.
func validID(id int64) bool {
	return id > 0 && id <= models.MaxInt4
}

// ProductReferenceError reports an order item whose product row does not exist.
type ProductReferenceError struct {
	ProductID int64
}

func (e *ProductReferenceError) Error() string {
	return fmt.Sprintf("product %d does not exist", e.ProductID)
}

// ProductFilter narrows ListProducts. Empty fields do not filter.
type ProductFilter struct {
	Category string
	Search   string
}

// Storage is the catalog and order persistence used by the storefront.
type Storage interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateOrder(ctx context.Context, order models.NewOrder, items []models.NewOrderItem) (*models.OrderResponse, error)
	GetOrder(ctx context.Context, id int64) (*models.OrderResponse, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

// PostgresStore implements Storage on PostgreSQL through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

var _ Storage = (*PostgresStore)(nil)

// New wraps an existing connection pool.
func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to the database named by dsn and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	return New(db), nil
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the tables if they do not exist. Safe to run repeatedly.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
