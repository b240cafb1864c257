package ctl

import (
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/tokens"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a random token key",
		Long:  "Generate a random AES-256 key in the hex form expected by token_key / -k.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := common.MakeRandHexString(tokens.KeySize)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
