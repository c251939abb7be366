package auth

import (
	"os"
	"time"
)

// TokenEnvVar holds a bearer token supplied through the environment
const TokenEnvVar = "FOLLOWRANK_BEARER_TOKEN"

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and answers for any account name.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets the token from the environment
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = "default"
	}

	return &Account{
		Name:         name,
		BearerToken:  token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the token is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(TokenEnvVar) != ""
}
