package services

// PasswordHasher hashes credentials at account creation and verifies them at
// login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}
