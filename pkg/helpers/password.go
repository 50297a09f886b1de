package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewPasswordHasher.
const (
	HasherWeak   = "weak"
	HasherBcrypt = "bcrypt"
)

// PasswordHasher turns a plaintext password into a stored hash and checks it back.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// NewPasswordHasher returns the hasher registered under name.
func NewPasswordHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch strings.ToLower(name) {
	case "", HasherWeak:
		return WeakHasher{}, nil
	case HasherBcrypt:
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// WeakHasher is the legacy rolling hash kept so existing rosters keep working.
// It is not a credential protection mechanism.
type WeakHasher struct{}

func (WeakHasher) Hash(plain string) (string, error) {
	return WeakHash(plain), nil
}

func (WeakHasher) Verify(hash, plain string) bool {
	return hash == WeakHash(plain)
}

// WeakHash computes h = h*31 + c over UTF-16 code units with int32 wrap-around,
// then renders "h" followed by the absolute value.
func WeakHash(input string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(input)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return "h" + strconv.FormatInt(v, 10)
}

// BcryptHasher hashes the plain text password using bcrypt
type BcryptHasher struct {
	Cost int
}

func (b BcryptHasher) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify compares a bcrypt hash with a plain password
func (BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
