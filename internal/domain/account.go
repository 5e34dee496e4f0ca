package domain

import "time"

// Role es el rol de autorización de una cuenta.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ProviderLink vincula una identidad externa con una cuenta interna.
type ProviderLink struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
}

// Account es la identidad interna de una persona, única por email.
type Account struct {
	ID            string         `json:"_id"`
	Email         string         `json:"email"`
	FullName      string         `json:"fullName,omitempty"`
	AvatarImage   string         `json:"avatarImage,omitempty"`
	ProviderLinks []ProviderLink `json:"providerLinks,omitempty"`
	Role          Role           `json:"role"`
	IsVerified    bool           `json:"isVerified"`
	Active        bool           `json:"active"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// LinkFor devuelve el vínculo de la cuenta para un proveedor, si existe.
func (a Account) LinkFor(provider string) (ProviderLink, bool) {
	for _, l := range a.ProviderLinks {
		if l.Provider == provider {
			return l, true
		}
	}
	return ProviderLink{}, false
}

// HasLink indica si la cuenta ya tiene exactamente ese vínculo.
func (a Account) HasLink(provider, providerID string) bool {
	l, ok := a.LinkFor(provider)
	return ok && l.ProviderID == providerID
}
