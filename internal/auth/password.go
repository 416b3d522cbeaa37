package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the cost signup has always used; stored hashes
// carry their own cost so verification is unaffected by changing it.
const DefaultBcryptCost = 10

// HashPassword returns the bcrypt hash of plain using the given cost.
// A cost below bcrypt's minimum falls back to DefaultBcryptCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plaintext candidate.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
