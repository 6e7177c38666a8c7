// Package services contains the application services of the vault.
// This file defines the authentication service: registering a vault
// user and opening a session by deriving and verifying the master key.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/cryptox"
	"github.com/dmitrijs2005/filevault/internal/models"
	"github.com/dmitrijs2005/filevault/internal/session"
	"github.com/dmitrijs2005/filevault/internal/storage"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a user with a fresh salt and key verifier.
//     The password never leaves the process; only the salt and the
//     verifier are stored.
//   - Login: derive the master key from the password and the stored
//     salt, check it against the verifier, and open a session.
//
// A wrong password and an unknown user are indistinguishable: both
// return common.ErrorUnauthorized.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (*session.Session, error)
}

type authService struct {
	catalog storage.Catalog
}

// NewAuthService constructs an AuthService bound to the given catalog.
func NewAuthService(catalog storage.Catalog) AuthService {
	return &authService{catalog: catalog}
}

func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return fmt.Errorf("salt generation error: %w", err)
	}

	masterKey := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(masterKey)

	verifier, err := cryptox.MakeVerifier(masterKey)
	if err != nil {
		return fmt.Errorf("verifier error: %w", err)
	}

	cred := &models.Credential{
		UserID:    username,
		Salt:      salt,
		Verifier:  *verifier,
		CreatedAt: time.Now().UTC(),
	}
	return a.catalog.PutCredential(ctx, cred)
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*session.Session, error) {
	cred, err := a.catalog.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	masterKey := cryptox.DeriveMasterKey(password, cred.Salt)
	if !cryptox.CheckVerifier(masterKey, &cred.Verifier) {
		common.WipeByteArray(masterKey)
		return nil, common.ErrorUnauthorized
	}

	return session.New(username, masterKey), nil
}
