// Package auth persists the backend session token in the system keyring.
package auth

import (
	"errors"

	"github.com/melody-cli/melody/constant"
	"github.com/zalando/go-keyring"
)

const (
	service   = constant.Melody + "-cli"
	tokenUser = "session-token"
	nameUser  = "session-user"
)

// SetToken stores the bearer token and the account it belongs to.
func SetToken(user, token string) error {
	if err := keyring.Set(service, tokenUser, token); err != nil {
		return err
	}
	return keyring.Set(service, nameUser, user)
}

// GetToken returns the stored bearer token.
func GetToken() (string, error) {
	return keyring.Get(service, tokenUser)
}

// User returns the account name saved with the token.
func User() (string, error) {
	return keyring.Get(service, nameUser)
}

// SignedIn reports whether a token is stored.
func SignedIn() bool {
	token, err := GetToken()
	return err == nil && token != ""
}

// DeleteToken removes the stored session. Deleting a missing session is not an error.
func DeleteToken() error {
	for _, user := range []string{tokenUser, nameUser} {
		if err := keyring.Delete(service, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
	}
	return nil
}
