package domain

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPageNumber mantiene el offset dentro de un int32.
	MaxPageNumber = math.MaxInt32 / MaxPageLimit
)

// PageQuery describe una página de un listado con búsqueda opcional.
type PageQuery struct {
	PageNumber int
	Limit      int
	Search     string
}

// Normalize aplica los valores por defecto a una consulta de página.
func (q PageQuery) Normalize() PageQuery {
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.PageNumber > MaxPageNumber {
		q.PageNumber = MaxPageNumber
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

// Offset es la cantidad de filas a saltar.
func (q PageQuery) Offset() int {
	return (q.PageNumber - 1) * q.Limit
}

// PageMeta es la metadata de paginación devuelta junto a un listado.
type PageMeta struct {
	TotalItems  int  `json:"totalItems"`
	Limit       int  `json:"limit"`
	PageNumber  int  `json:"pageNumber"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	EndCursor   int  `json:"endCursor"`
}

// NewPageMeta calcula la metadata a partir del total filtrado y los items devueltos.
func NewPageMeta(q PageQuery, totalItems, returned int) PageMeta {
	endCursor := q.Offset() + returned
	totalPages := 0
	if q.Limit > 0 {
		totalPages = (totalItems + q.Limit - 1) / q.Limit
	}
	return PageMeta{
		TotalItems:  totalItems,
		Limit:       q.Limit,
		PageNumber:  q.PageNumber,
		TotalPages:  totalPages,
		HasNextPage: endCursor < totalItems,
		EndCursor:   endCursor,
	}
}
