// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package main

import (
	"bufio"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/shelfmark/shelfmark/internal/auth"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var generate int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Hash a password for manual user provisioning",
		Long: `Prints the Argon2id hash of a password, suitable for inserting
into the users table. With --generate, a random password is created
and printed alongside its hash. Without an argument the password is
read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher := auth.NewArgon2idHasher()

			var password string
			switch {
			case generate > 0:
				generated, err := generatePassword(generate)
				if err != nil {
					return err
				}
				password = generated
				cmd.Printf("password: %s\n", password)
			case len(args) == 1:
				password = args[0]
			default:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return oops.Code("HASH_FAILED").Wrapf(err, "reading password from stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if password == "" {
				return oops.Code("HASH_FAILED").Errorf("password must not be empty")
			}

			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			cmd.Printf("hash: %s\n", hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&generate, "generate", 0, "generate a random password of this length instead")

	return cmd
}

// generatePassword draws length characters uniformly from the password
// alphabet.
func generatePassword(length int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", oops.Code("HASH_FAILED").Wrapf(err, "generating password")
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String(), nil
}
