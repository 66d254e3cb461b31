package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 32
	keySize  = 32

	// Iterations is the PBKDF2 work factor for new keys.
	Iterations = 100_000
)

// ErrDecrypt is returned when an envelope cannot be opened, usually because
// of a wrong password.
var ErrDecrypt = errors.New("crypto: decryption failed")

// Envelope is a password-sealed payload. Iterations is stored so the work
// factor can change without breaking older vaults.
type Envelope struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Iterations int    `json:"iterations,omitempty"`
}

// Key is a derived AES key bound to its salt. Deriving is slow on purpose,
// so callers sealing repeatedly keep a Key around.
type Key struct {
	key  []byte
	salt []byte
	iter int
}

// NewKey derives a key from pass with a fresh random salt.
func NewKey(pass string) (*Key, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return DeriveKey(pass, salt, Iterations), nil
}

// DeriveKey derives the key for an existing salt and work factor. A zero
// iter means Iterations.
func DeriveKey(pass string, salt []byte, iter int) *Key {
	if iter == 0 {
		iter = Iterations
	}
	return &Key{
		key:  pbkdf2.Key([]byte(pass), salt, iter, keySize, sha256.New),
		salt: salt,
		iter: iter,
	}
}

// KeyFor derives the key that opens env.
func KeyFor(env Envelope, pass string) *Key {
	return DeriveKey(pass, env.Salt, env.Iterations)
}

// Seal encrypts plaintext under k with a fresh nonce.
func (k *Key) Seal(plaintext []byte) (*Envelope, error) {
	gcm, err := newGCM(k.key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return &Envelope{
		Salt:       k.salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
		Iterations: k.iter,
	}, nil
}

// Open decrypts env. A wrong key yields ErrDecrypt.
func (k *Key) Open(env Envelope) ([]byte, error) {
	gcm, err := newGCM(k.key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce size", ErrDecrypt)
	}

	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Wipe zeroes the key material.
func (k *Key) Wipe() {
	clearBytes(k.key)
}

// Seal encrypts plaintext with a one-off key derived from pass.
func Seal(plaintext []byte, pass string) (*Envelope, error) {
	k, err := NewKey(pass)
	if err != nil {
		return nil, err
	}
	defer k.Wipe()
	return k.Seal(plaintext)
}

// Open decrypts env with a key derived from pass.
func Open(env Envelope, pass string) ([]byte, error) {
	k := KeyFor(env, pass)
	defer k.Wipe()
	return k.Open(env)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func clearBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
