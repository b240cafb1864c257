package ctl

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/tokens"
	"github.com/spf13/cobra"
)

func newInspectTokenCmd() *cobra.Command {
	var (
		key    string
		secret string
		maxAge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect-token TOKEN",
		Short: "Show whom a token names and when it was issued",
		Long: `Decode a token with the server's key and print its email and issue time.
Encrypted tokens need --key, signed tokens need --secret. The password carried
by encrypted tokens is never printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				email  string
				issued time.Time
			)

			switch {
			case secret != "":
				signer, err := tokens.NewSigner([]byte(secret), maxAge)
				if err != nil {
					return err
				}
				c, err := signer.Verify(args[0])
				if err != nil {
					return err
				}
				email, issued = c.Email, c.IssuedAt
			case key != "":
				codec, err := tokens.NewCodecFromHex(key)
				if err != nil {
					return err
				}
				c, err := codec.Decode(args[0])
				if err != nil {
					return err
				}
				email, issued = c.Email, c.IssuedAt
			default:
				return fmt.Errorf("one of --key or --secret is required")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "email:  %s\n", email)
			fmt.Fprintf(out, "issued: %s\n", issued.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "hex token key for encrypted tokens")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret for signed tokens")
	cmd.Flags().DurationVar(&maxAge, "max-age", 7*24*time.Hour, "token lifetime for signed tokens")
	cmd.MarkFlagsMutuallyExclusive("key", "secret")

	return cmd
}
