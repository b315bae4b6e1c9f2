package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// kycRecordRow maps the kyc_records table.
type kycRecordRow struct {
	bun.BaseModel `bun:"table:kyc_records"`

	CustomerID   string `bun:"customer_id,pk"`
	Status       string `bun:"status,notnull"`
	CustomerName string `bun:"customer_name"`
	DOB          string `bun:"dob"`
	PAN          string `bun:"pan"`
	Aadhaar      string `bun:"aadhaar"`
	LastVerified string `bun:"last_verified"`
}

// PostgresStore reads KYC records from Postgres through bun.
type PostgresStore struct {
	db      *bun.DB
	timeout time.Duration
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresStore{db: db, timeout: timeout}, nil
}

func (s *PostgresStore) Lookup(ctx context.Context, customerID string) (contractx.KYCRecord, error) {
	id := strings.TrimSpace(customerID)
	if id == "" {
		return contractx.KYCRecord{}, fmt.Errorf("%w: customer id is empty", contractx.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row kycRecordRow
	err := s.db.NewSelect().
		Model(&row).
		Where("customer_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contractx.KYCRecord{}, fmt.Errorf("%w: customer_id=%s", contractx.ErrRecordNotFound, id)
		}
		return contractx.KYCRecord{}, fmt.Errorf("query kyc record: %w", err)
	}

	return rowToRecord(row), nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func rowToRecord(row kycRecordRow) contractx.KYCRecord {
	status := contractx.RecordStatus(strings.ToUpper(strings.TrimSpace(row.Status)))
	switch status {
	case contractx.RecordActive, contractx.RecordExpired:
	default:
		// Unknown labels degrade to ACTIVE rather than inventing a state.
		status = contractx.RecordActive
	}

	return contractx.KYCRecord{
		CustomerID:   row.CustomerID,
		Status:       status,
		CustomerName: row.CustomerName,
		DOB:          row.DOB,
		Documents: contractx.RecordDocuments{
			PAN:          row.PAN,
			Aadhaar:      row.Aadhaar,
			LastVerified: row.LastVerified,
		},
	}
}
