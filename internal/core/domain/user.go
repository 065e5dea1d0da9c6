package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered platform user identified by an API key.
type User struct {
	ID        uuid.UUID   `json:"id"`
	APIKey    string      `json:"-"` // Opaque credential, never expose
	WalletIDs []uuid.UUID `json:"wallet_ids"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUser creates a user with a fresh id and the given API key.
func NewUser(apiKey string) *User {
	return &User{
		ID:        uuid.New(),
		APIKey:    apiKey,
		CreatedAt: time.Now().UTC(),
	}
}

// CanCreateWallet reports whether the user is below the wallet limit.
func (u *User) CanCreateWallet(maxWallets int) bool {
	return len(u.WalletIDs) < maxWallets
}

// AddWallet records ownership of a wallet. Adding the same wallet twice
// is a no-op.
func (u *User) AddWallet(walletID uuid.UUID) {
	for _, id := range u.WalletIDs {
		if id == walletID {
			return
		}
	}
	u.WalletIDs = append(u.WalletIDs, walletID)
}
