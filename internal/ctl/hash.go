package ctl

import (
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	var (
		iterations int
		keyLength  int
		salt       string
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password the way the server stores it",
		Long: `Read a password and print a salt and the matching stored hash.
Useful for seeding accounts or checking KDF settings against an existing row.`,
		Example: `  gophctl hash
  echo secret | gophctl hash --salt 0a1b2c`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := cryptox.NewHasher(iterations, keyLength, 1)
			if err != nil {
				return err
			}

			pw, err := getPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			if salt == "" {
				salt = cryptox.GenerateSalt()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "salt: %s\n", salt)
			fmt.Fprintf(out, "hash: %s\n", hasher.Hash(string(pw), salt))
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", cryptox.DefaultIterations, "PBKDF2 iteration count")
	cmd.Flags().IntVar(&keyLength, "key-length", cryptox.DefaultKeyLength, "derived key length in bytes")
	cmd.Flags().StringVar(&salt, "salt", "", "salt to use (random when empty)")

	return cmd
}
