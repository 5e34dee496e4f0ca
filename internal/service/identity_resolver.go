package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// AccountStore es la parte del repositorio de cuentas que usa el resolver.
type AccountStore interface {
	FindByEmailOrProviderLink(ctx context.Context, email, provider, providerID string) (domain.Account, error)
	Create(ctx context.Context, account domain.Account) error
	LinkAndVerify(ctx context.Context, id string, link domain.ProviderLink, at time.Time) (domain.Account, error)
}

// Assertion es la identidad declarada por el cliente al hacer login externo.
// No se verifica contra el proveedor.
type Assertion struct {
	Email      string
	Name       string
	Picture    string
	Provider   string
	ProviderID string
}

var ErrInvalidAssertion = errors.New("login assertion invalid")

// IdentityResolver reconcilia una aserción de login con las cuentas existentes.
type IdentityResolver struct {
	logger   *zap.Logger
	accounts AccountStore
	now      func() time.Time
}

func NewIdentityResolver(logger *zap.Logger, accounts AccountStore) *IdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{
		logger:   logger,
		accounts: accounts,
		now:      time.Now,
	}
}

// Resolve busca o crea la cuenta de la aserción y actualiza vínculo y verificación.
// Si otro login crea la misma cuenta en paralelo, se reintenta una sola vez por el
// camino de búsqueda para loguear contra el registro ganador.
func (r *IdentityResolver) Resolve(ctx context.Context, a Assertion) (domain.Account, error) {
	if r.accounts == nil {
		return domain.Account{}, errors.New("identity resolver not configured")
	}
	a, err := normalizeAssertion(a)
	if err != nil {
		return domain.Account{}, err
	}

	acct, err := r.resolveOnce(ctx, a)
	if errors.Is(err, repository.ErrDuplicateAccount) {
		r.logger.Info("account create raced, retrying lookup",
			zap.String("email", a.Email),
			zap.String("provider", a.Provider),
		)
		acct, err = r.resolveOnce(ctx, a)
	}
	return acct, err
}

func (r *IdentityResolver) resolveOnce(ctx context.Context, a Assertion) (domain.Account, error) {
	acct, err := r.accounts.FindByEmailOrProviderLink(ctx, a.Email, a.Provider, a.ProviderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.create(ctx, a)
	}
	if err != nil {
		return domain.Account{}, err
	}

	_, linked := acct.LinkFor(a.Provider)
	if linked && acct.IsVerified {
		return acct, nil
	}

	// Solo vínculo y verificación: el rol lo cambia únicamente un admin.
	link := domain.ProviderLink{Provider: a.Provider, ProviderID: a.ProviderID}
	return r.accounts.LinkAndVerify(ctx, acct.ID, link, r.now().UTC())
}

func (r *IdentityResolver) create(ctx context.Context, a Assertion) (domain.Account, error) {
	now := r.now().UTC()
	acct := domain.Account{
		ID:            uuid.NewString(),
		Email:         a.Email,
		FullName:      a.Name,
		AvatarImage:   a.Picture,
		ProviderLinks: []domain.ProviderLink{{Provider: a.Provider, ProviderID: a.ProviderID}},
		Role:          domain.RoleUser,
		IsVerified:    false,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.accounts.Create(ctx, acct); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

func normalizeAssertion(a Assertion) (Assertion, error) {
	a.Email = normalizeEmail(a.Email)
	a.ProviderID = strings.TrimSpace(a.ProviderID)
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	a.Name = strings.TrimSpace(a.Name)
	a.Picture = strings.TrimSpace(a.Picture)
	if a.Email == "" || a.ProviderID == "" || a.Provider == "" {
		return Assertion{}, ErrInvalidAssertion
	}
	return a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
