package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

// Argon2idParams tunes the admin password hash.
type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher produces a storable hash for a password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// encodedHash is the PHC form stored in admin_credentials:
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type encodedHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func (h encodedHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key))
}

func (h encodedHash) derive(password string) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, uint32(len(h.key)))
}

func parseEncodedHash(value string) (encodedHash, error) {
	var h encodedHash

	fields := strings.Split(value, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return h, ErrInvalidPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
	}
	if version != argon2.Version {
		return h, ErrIncompatiblePasswordVersion
	}

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
	}
	if h.params.Iterations == 0 || h.params.Parallelism == 0 {
		return h, ErrInvalidPasswordHash
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return h, fmt.Errorf("%w: salt: %v", ErrInvalidPasswordHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return h, ErrInvalidPasswordHash
	}
	h.params.SaltLength = uint32(len(h.salt))
	h.params.KeyLength = uint32(len(h.key))
	return h, nil
}

// HashPassword hashes with DefaultArgon2idParams.
func HashPassword(password string) (string, error) {
	return CreatePasswordHash(password, DefaultArgon2idParams)
}

// CreatePasswordHash derives a fresh salted argon2id key for password.
func CreatePasswordHash(password string, params Argon2idParams) (string, error) {
	h := encodedHash{params: params, salt: make([]byte, params.SaltLength), key: make([]byte, params.KeyLength)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", err
	}
	h.key = h.derive(password)
	return h.String(), nil
}

// VerifyPassword returns ErrInvalidCredentials when password does not match
// hashedPassword, and a format error when the hash cannot be decoded.
func VerifyPassword(hashedPassword, password string) error {
	h, err := parseEncodedHash(hashedPassword)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(h.key, h.derive(password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
