package importer

import (
	"fmt"

	"github.com/logistica-platform/api/internal/store"
)

// Entity identifies one of the record kinds the pipeline can import.
type Entity string

const (
	EntityCidades      Entity = "cidades"
	EntityFuncionarios Entity = "funcionarios"
	EntityVeiculos     Entity = "veiculos"
	EntityVendedores   Entity = "vendedores"
	EntityRotas        Entity = "rotas"
	EntityFolgas       Entity = "folgas"
)

var entityLabels = map[Entity]string{
	EntityCidades:      "Cidades",
	EntityFuncionarios: "Funcionários",
	EntityVeiculos:     "Veículos",
	EntityVendedores:   "Vendedores",
	EntityRotas:        "Rotas",
	EntityFolgas:       "Folgas",
}

var entityCollections = map[Entity]string{
	EntityCidades:      store.CollectionCidades,
	EntityFuncionarios: store.CollectionFuncionarios,
	EntityVeiculos:     store.CollectionVeiculos,
	EntityVendedores:   store.CollectionVendedores,
	EntityRotas:        store.CollectionRotas,
	EntityFolgas:       store.CollectionFolgas,
}

// Label is the user-facing name of the entity, as shown in error messages.
func (e Entity) Label() string {
	if label, ok := entityLabels[e]; ok {
		return label
	}
	return string(e)
}

// Collection is the store collection the entity's records live in.
func (e Entity) Collection() string {
	return entityCollections[e]
}

func ParseEntity(raw string) (Entity, error) {
	entity := Entity(raw)
	if _, ok := entityLabels[entity]; !ok {
		return "", fmt.Errorf("unknown entity type %q", raw)
	}
	return entity, nil
}
