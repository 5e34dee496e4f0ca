package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var (
	ErrDuplicateAccount = errors.New("account already exists")
	ErrDuplicateSlug    = errors.New("blog slug already exists")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// validID evita mandar a Postgres ids que no son uuid (22P02).
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// likePattern escapa comodines para búsquedas con ILIKE.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(search)) + "%"
}
