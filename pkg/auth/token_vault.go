package auth

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnvVar overrides the generated vault passphrase
const PassphraseEnvVar = "FOLLOWRANK_PASSPHRASE"

const (
	vaultVersion    = 2
	vaultSaltSize   = 16
	vaultKeySize    = 32
	vaultIterations = 210_000
)

// TokenVault keeps bearer tokens in a single file. Each token is sealed on
// its own with AES-GCM, using the account name as additional data, under a
// key derived with PBKDF2 from the vault passphrase.
type TokenVault struct {
	path       string
	passphrase []byte

	mu      sync.Mutex
	keySalt []byte
	key     []byte
}

type vaultFile struct {
	Version int                   `json:"version"`
	Salt    []byte                `json:"salt"`
	Tokens  map[string]vaultEntry `json:"tokens"`
}

type vaultEntry struct {
	Sealed   []byte    `json:"sealed"`
	Modified time.Time `json:"modified"`
}

// NewTokenVault opens the vault at path. The passphrase comes from
// FOLLOWRANK_PASSPHRASE, or from a .passphrase file beside the vault that is
// generated on first use.
func NewTokenVault(path string) (*TokenVault, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := vaultPassphrase(dir)
	if err != nil {
		return nil, err
	}
	return &TokenVault{path: path, passphrase: passphrase}, nil
}

func vaultPassphrase(dir string) ([]byte, error) {
	if pass := os.Getenv(PassphraseEnvVar); pass != "" {
		return []byte(pass), nil
	}

	file := filepath.Join(dir, ".passphrase")
	content, err := os.ReadFile(file)
	if err == nil && len(content) > 0 {
		return content, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	pass := []byte(rand.Text())
	if err := os.WriteFile(file, pass, 0600); err != nil {
		return nil, fmt.Errorf("failed to save passphrase: %w", err)
	}
	return pass, nil
}

// Store seals account's token under its name
func (v *TokenVault) Store(account *Account) error {
	if account == nil || account.Name == "" || account.BearerToken == "" {
		return ErrInvalidCredentials
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.read()
	if err != nil {
		return err
	}
	if len(f.Salt) == 0 {
		f.Salt = randomBytes(vaultSaltSize)
	}

	sealed, err := seal(v.keyFor(f.Salt), account.Name, account.BearerToken)
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}

	modified := account.LastModified
	if modified.IsZero() {
		modified = time.Now()
	}
	f.Tokens[account.Name] = vaultEntry{Sealed: sealed, Modified: modified}
	return v.write(f)
}

func (v *TokenVault) Retrieve(name string) (*Account, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.read()
	if err != nil {
		return nil, err
	}
	entry, ok := f.Tokens[name]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return v.unseal(f.Salt, name, entry)
}

// List returns every stored account ordered by name
func (v *TokenVault) List() ([]*Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.read()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(f.Tokens))
	for name := range f.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	accounts := make([]*Account, 0, len(names))
	for _, name := range names {
		account, err := v.unseal(f.Salt, name, f.Tokens[name])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Delete removes name, and the vault file with its last token
func (v *TokenVault) Delete(name string) error {
	if name == "" {
		return ErrInvalidCredentials
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.read()
	if err != nil {
		return err
	}
	if _, ok := f.Tokens[name]; !ok {
		return ErrCredentialsNotFound
	}
	delete(f.Tokens, name)
	return v.write(f)
}

func (v *TokenVault) Exists(name string) bool {
	_, err := v.Retrieve(name)
	return err == nil
}

func (v *TokenVault) unseal(salt []byte, name string, entry vaultEntry) (*Account, error) {
	token, err := open(v.keyFor(salt), name, entry.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal token for %s: %w", name, err)
	}
	return &Account{Name: name, BearerToken: token, LastModified: entry.Modified}, nil
}

// keyFor derives the key for salt, reusing the last derivation
func (v *TokenVault) keyFor(salt []byte) []byte {
	if v.key != nil && bytes.Equal(salt, v.keySalt) {
		return v.key
	}
	v.keySalt = bytes.Clone(salt)
	v.key = pbkdf2.Key(v.passphrase, salt, vaultIterations, vaultKeySize, sha256.New)
	return v.key
}

// read loads the vault, a missing file reads as empty
func (v *TokenVault) read() (*vaultFile, error) {
	content, err := os.ReadFile(v.path)
	if os.IsNotExist(err) {
		return &vaultFile{Version: vaultVersion, Tokens: make(map[string]vaultEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	var f vaultFile
	if err := json.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse vault: %w", err)
	}
	if f.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported vault version %d", f.Version)
	}
	if f.Tokens == nil {
		f.Tokens = make(map[string]vaultEntry)
	}
	return &f, nil
}

func (v *TokenVault) write(f *vaultFile) error {
	if len(f.Tokens) == 0 {
		if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove vault: %w", err)
		}
		return nil
	}

	content, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vault: %w", err)
	}

	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	return os.Rename(tmp, v.path)
}

func seal(key []byte, name, token string) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := randomBytes(aead.NonceSize())
	return aead.Seal(nonce, nonce, []byte(token), []byte(name)), nil
}

func open(key []byte, name string, sealed []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// crypto/rand.Read does not fail on supported platforms
func randomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
