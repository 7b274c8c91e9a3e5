package store

import (
	"context"
	"time"
)

// Collection names used by the application. Records of every entity live in
// the same keyed document table, partitioned by collection.
const (
	CollectionCidades      = "cidades"
	CollectionFuncionarios = "funcionarios"
	CollectionVeiculos     = "veiculos"
	CollectionVendedores   = "vendedores"
	CollectionRotas        = "rotas"
	CollectionFolgas       = "folgas"
	CollectionImportLogs   = "import_logs"
)

// Record is one document in a collection. Data carries the document body
// as stored; the store assigns ID and CreatedAt on insert.
type Record struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
}

// Store is the keyed document collection the import pipeline runs against.
// List returns every current record of a collection; Create persists one new
// record and returns its assigned identifier.
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
}
