package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/electr1fy0/bluenotes/crypto"
)

// ErrWrongPassword is returned when a vault cannot be decrypted.
var ErrWrongPassword = errors.New("storage: wrong vault password")

// Vault is a KV kept as a password-sealed JSON document. The key is derived
// once per open so writes only pay for AES-GCM.
type Vault struct {
	path string

	mu   sync.Mutex
	key  *crypto.Key
	data map[string]string
}

// OpenVault decrypts the vault at path, creating an empty one sealed with
// password when the file does not exist yet.
func OpenVault(path, password string) (*Vault, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("stat vault: %w", err)
	}
	if !exists {
		key, err := crypto.NewKey(password)
		if err != nil {
			return nil, err
		}
		v := &Vault{path: path, key: key, data: make(map[string]string)}
		if err := v.save(); err != nil {
			return nil, err
		}
		return v, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}
	var env crypto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode vault envelope: %w", err)
	}

	key := crypto.KeyFor(env, password)
	plain, err := key.Open(env)
	if err != nil {
		key.Wipe()
		if errors.Is(err, crypto.ErrDecrypt) {
			return nil, ErrWrongPassword
		}
		return nil, err
	}

	var doc fileDoc
	if err := json.Unmarshal(plain, &doc); err != nil {
		key.Wipe()
		return nil, fmt.Errorf("decode vault: %w", err)
	}
	if doc.Data == nil {
		doc.Data = make(map[string]string)
	}
	return &Vault{path: path, key: key, data: doc.Data}, nil
}

func (v *Vault) Get(key string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.data[key]
	return val, ok, nil
}

func (v *Vault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev, had := v.data[key]
	v.data[key] = value
	if err := v.save(); err != nil {
		if had {
			v.data[key] = prev
		} else {
			delete(v.data, key)
		}
		return err
	}
	return nil
}

// ChangePassword re-seals the vault under a new password.
func (v *Vault) ChangePassword(password string) error {
	if password == "" {
		return errors.New("storage: empty vault password")
	}
	key, err := crypto.NewKey(password)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.key
	v.key = key
	if err := v.save(); err != nil {
		v.key = old
		key.Wipe()
		return err
	}
	old.Wipe()
	return nil
}

// Close wipes the key material. The vault must not be used afterwards.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.key.Wipe()
	return nil
}

func (v *Vault) save() error {
	plain, err := json.Marshal(fileDoc{Data: v.data})
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	env, err := v.key.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal vault: %w", err)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode vault envelope: %w", err)
	}
	if err := writeFileAtomic(v.path, raw); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}
