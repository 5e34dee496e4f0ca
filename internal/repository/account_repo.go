package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-api/internal/domain"
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	FindByEmailOrProviderLink(ctx context.Context, email, provider, providerID string) (domain.Account, error)
	Create(ctx context.Context, account domain.Account) error
	Update(ctx context.Context, account domain.Account) error
	LinkAndVerify(ctx context.Context, id string, link domain.ProviderLink, at time.Time) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	List(ctx context.Context, q domain.PageQuery) ([]domain.Account, int, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role domain.Role) (int, error)
	Delete(ctx context.Context, id string) error
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id::text, email, full_name, avatar_image, role, is_verified, active, created_at, updated_at`

// FindByEmailOrProviderLink prefiere la coincidencia por email sobre la del vínculo.
func (r *PgAccountRepository) FindByEmailOrProviderLink(ctx context.Context, email, provider, providerID string) (domain.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts a
		WHERE LOWER(a.email) = LOWER($1)
		   OR EXISTS (
		       SELECT 1 FROM account_provider_links l
		       WHERE l.account_id = a.id AND l.provider = $2 AND l.provider_id = $3
		   )
		ORDER BY (LOWER(a.email) = LOWER($1)) DESC, a.created_at ASC
		LIMIT 1
	`
	acct, err := scanAccount(r.pool.QueryRow(ctx, query, email, provider, providerID))
	if err != nil {
		return domain.Account{}, err
	}
	if err := r.attachLinks(ctx, []*domain.Account{&acct}); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const insertAccount = `
		INSERT INTO accounts (id, email, full_name, avatar_image, role, is_verified, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertAccount,
			account.ID,
			account.Email,
			account.FullName,
			account.AvatarImage,
			string(account.Role),
			account.IsVerified,
			account.Active,
			account.CreatedAt,
			account.UpdatedAt,
		); err != nil {
			return err
		}
		return insertLinks(ctx, tx, account.ID, account.ProviderLinks)
	})
	if isUniqueViolation(err) {
		return ErrDuplicateAccount
	}
	return err
}

// Update persiste la cuenta; is_verified nunca vuelve a false.
func (r *PgAccountRepository) Update(ctx context.Context, account domain.Account) error {
	const query = `
		UPDATE accounts
		SET full_name = $1, avatar_image = $2, role = $3, is_verified = is_verified OR $4, active = $5, updated_at = $6
		WHERE id = $7
	`
	if !validID(account.ID) {
		return pgx.ErrNoRows
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			account.FullName,
			account.AvatarImage,
			string(account.Role),
			account.IsVerified,
			account.Active,
			account.UpdatedAt,
			account.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return insertLinks(ctx, tx, account.ID, account.ProviderLinks)
	})
}

// LinkAndVerify es la única escritura del login sobre una cuenta existente: agrega el
// vínculo si el proveedor no estaba y marca la cuenta verificada. Rol, perfil y
// estado quedan como están en la base; devuelve la fila después de la escritura.
func (r *PgAccountRepository) LinkAndVerify(ctx context.Context, id string, link domain.ProviderLink, at time.Time) (domain.Account, error) {
	const query = `
		UPDATE accounts
		SET is_verified = true, updated_at = $1
		WHERE id = $2
		RETURNING ` + accountColumns
	if !validID(id) {
		return domain.Account{}, pgx.ErrNoRows
	}
	var acct domain.Account
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		acct, err = scanAccount(tx.QueryRow(ctx, query, at, id))
		if err != nil {
			return err
		}
		return insertLinks(ctx, tx, id, []domain.ProviderLink{link})
	})
	if err != nil {
		return domain.Account{}, err
	}
	if err := r.attachLinks(ctx, []*domain.Account{&acct}); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if !validID(id) {
		return domain.Account{}, pgx.ErrNoRows
	}
	acct, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Account{}, err
	}
	if err := r.attachLinks(ctx, []*domain.Account{&acct}); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

// List devuelve una página de cuentas y el total que coincide con la búsqueda.
func (r *PgAccountRepository) List(ctx context.Context, q domain.PageQuery) ([]domain.Account, int, error) {
	q = q.Normalize()
	where := ""
	args := []any{}
	if strings.TrimSpace(q.Search) != "" {
		where = `WHERE email ILIKE $1 OR full_name ILIKE $1`
		args = append(args, likePattern(q.Search))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + accountColumns + ` FROM accounts ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.pool.Query(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	ptrs := make([]*domain.Account, len(accounts))
	for i := range accounts {
		ptrs[i] = &accounts[i]
	}
	if err := r.attachLinks(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *PgAccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

func (r *PgAccountRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE role = $1`, string(role)).Scan(&n)
	return n, err
}

func (r *PgAccountRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) attachLinks(ctx context.Context, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(accounts))
	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}
	const query = `
		SELECT account_id::text, provider, provider_id
		FROM account_provider_links
		WHERE account_id = ANY($1::uuid[])
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var accountID string
		var link domain.ProviderLink
		if err := rows.Scan(&accountID, &link.Provider, &link.ProviderID); err != nil {
			return err
		}
		if a, ok := byID[accountID]; ok {
			a.ProviderLinks = append(a.ProviderLinks, link)
		}
	}
	return rows.Err()
}

func insertLinks(ctx context.Context, tx pgx.Tx, accountID string, links []domain.ProviderLink) error {
	const query = `
		INSERT INTO account_provider_links (account_id, provider, provider_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, provider) DO NOTHING
	`
	for _, l := range links {
		if _, err := tx.Exec(ctx, query, accountID, l.Provider, l.ProviderID); err != nil {
			return err
		}
	}
	return nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.FullName,
		&a.AvatarImage,
		&role,
		&a.IsVerified,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	return a, err
}
