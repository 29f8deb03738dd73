package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/gluecal/internal"
)

func newConfigureCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Give access to the application",
		Long: `Log in to the calendar platform and store the account in the database. The
OAuth client is read from credentials_file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			cfg, storage, err := openStorage(opts)
			if err != nil {
				return err
			}
			defer storage.Close()

			if cfg.Platform != googlePlatform {
				return fmt.Errorf("calendar %q is not implemented", cfg.Platform)
			}
			googleCal, err := newGoogleClient(w, cfg, opts.Verbose)
			if err != nil {
				return fmt.Errorf("creating client: %v", err)
			}

			authToken, err := googleCal.Login(ctx, func(authURL string) {
				fmt.Fprintf(w, "Go to the following link in your browser\n%s\n", authURL)
			})
			if err != nil {
				return fmt.Errorf("google: logging in: %v", err)
			}
			userEmail, err := googleCal.Email(ctx, authToken)
			if err != nil {
				return fmt.Errorf("google: getting email: %v", err)
			}

			auth, err := json.Marshal(authToken)
			if err != nil {
				return err
			}
			acc := internal.Account{
				Platform: googlePlatform,
				Name:     userEmail,
				Auth:     string(auth),
			}
			fmt.Fprintf(w, "Saving account %q for %q provider...\n", acc.Name, acc.Platform)
			if err := storage.AddAccount(ctx, &acc); err != nil {
				return fmt.Errorf("saving account: %v", err)
			}
			return nil
		},
	}
}
