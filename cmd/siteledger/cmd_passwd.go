package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/siteledger/internal/auth"
	"github.com/nhle/siteledger/internal/credential"
)

const minPasswordLen = 8

func runPasswd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if passwdClear {
		if err := credential.Delete(credential.AdminPasswordKey); err != nil {
			return err
		}
		fmt.Fprintln(out, "keyring override removed")
		return nil
	}

	var password, confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New admin password").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if len(s) < minPasswordLen {
						return fmt.Errorf("must be at least %d characters", minPasswordLen)
					}
					return nil
				}).
				Value(&password),
			huh.NewInput().
				Title("Confirm").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	if passwdHashOnly {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, hash)
		return nil
	}

	if err := credential.Set(credential.AdminPasswordKey, password); err != nil {
		return err
	}
	fmt.Fprintln(out, "admin password stored in the OS keyring")
	return nil
}
