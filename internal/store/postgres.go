package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps every document in a single records table with a JSONB body,
// one row per document, keyed by (collection, id).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, data, created_at
		FROM records
		WHERE collection = $1
		ORDER BY created_at
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]Record, 0, 64)
	for rows.Next() {
		var record Record
		var id uuid.UUID
		var raw []byte
		if err := rows.Scan(&id, &raw, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", collection, err)
		}
		record.ID = id.String()
		if err := json.Unmarshal(raw, &record.Data); err != nil {
			return nil, fmt.Errorf("decode %s record %s: %w", collection, record.ID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return records, nil
}

func (p *Postgres) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode %s record: %w", collection, err)
	}

	var id uuid.UUID
	err = p.pool.QueryRow(ctx, `
		INSERT INTO records (collection, data)
		VALUES ($1, $2)
		RETURNING id
	`, collection, body).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create %s record: %w", collection, err)
	}
	return id.String(), nil
}
