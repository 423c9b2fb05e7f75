package store

import (
	"encoding/json"
	"os"
)

// LoadAccounts returns all registered meters. A missing or malformed
// accounts file yields an empty list, not an error.
func (s *Store) LoadAccounts() ([]Account, error) {
	data, err := os.ReadFile(s.accountsFile)
	if os.IsNotExist(err) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, err
	}

	var accounts []Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return []Account{}, nil
	}
	return accounts, nil
}

// SaveAccounts writes the full account list.
func (s *Store) SaveAccounts(accounts []Account) error {
	return writeJSON(s.accountsFile, accounts)
}
