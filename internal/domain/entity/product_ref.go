package entity

import (
	"strings"

	"github.com/jhoicas/retail-backoffice/internal/domain"
)

// ProductRefKind identifica por qué atributo se referencia un producto en una línea.
type ProductRefKind int

const (
	RefByID ProductRefKind = iota + 1
	RefByCode
	RefByName
)

func (k ProductRefKind) String() string {
	switch k {
	case RefByID:
		return "id"
	case RefByCode:
		return "code"
	case RefByName:
		return "name"
	default:
		return "unknown"
	}
}

// ProductRef es una referencia a producto por exactamente uno de: id, código o nombre exacto.
// Se resuelve una sola vez a un producto concreto antes de cualquier lógica de stock.
type ProductRef struct {
	Kind  ProductRefKind
	Value string
}

// ByID referencia un producto por su id interno.
func ByID(id string) ProductRef { return ProductRef{Kind: RefByID, Value: id} }

// ByCode referencia un producto por su código.
func ByCode(code string) ProductRef { return ProductRef{Kind: RefByCode, Value: code} }

// ByName referencia un producto por su nombre exacto.
func ByName(name string) ProductRef { return ProductRef{Kind: RefByName, Value: name} }

// NewProductRef construye la referencia a partir de los tres campos opcionales de una línea.
// Falla con ErrInvalidProductRef si no viene ninguno o viene más de uno.
func NewProductRef(id, code, name string) (ProductRef, error) {
	id, code, name = strings.TrimSpace(id), strings.TrimSpace(code), strings.TrimSpace(name)
	var refs []ProductRef
	if id != "" {
		refs = append(refs, ByID(id))
	}
	if code != "" {
		refs = append(refs, ByCode(code))
	}
	if name != "" {
		refs = append(refs, ByName(name))
	}
	if len(refs) != 1 {
		return ProductRef{}, domain.ErrInvalidProductRef
	}
	return refs[0], nil
}

// Valid indica si la referencia tiene un tipo conocido y un valor no vacío.
func (r ProductRef) Valid() bool {
	return r.Kind >= RefByID && r.Kind <= RefByName && strings.TrimSpace(r.Value) != ""
}

func (r ProductRef) String() string {
	return r.Kind.String() + ":" + r.Value
}
