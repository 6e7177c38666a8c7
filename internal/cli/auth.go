package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new vault account.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.withRetry(ctx, func(ctx context.Context) error {
		return a.authService.Register(ctx, userName, password)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			log.Printf("User %s already exists", userName)
		} else {
			log.Printf("Registration unsuccessful: %s", err.Error())
		}
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to open a session.
//
// On success the new session replaces any previous one, whose key is
// wiped. A wrong password and an unknown user produce the same message.
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var sess *session.Session
	err = a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		sess, err = a.authService.Login(ctx, userName, password)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			log.Printf("Login unsuccessful: wrong username or password")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	if a.session != nil {
		a.session.Close()
	}
	a.session = sess
	log.Printf("Login successful")
	return nil
}

// Logout closes the current session and wipes its master key.
func (a *App) Logout(ctx context.Context) error {
	if a.session == nil {
		return nil
	}
	a.session.Close()
	a.session = nil
	log.Printf("Logged out")
	return nil
}
