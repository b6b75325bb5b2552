package ports

import "github.com/apiauth/account-service/internal/core/domain"

// TokenIssuer produces an opaque bearer token encoding the user's identity
// and role claims. Tokens are never persisted by the core; expiry is owned
// by the issuer.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}
