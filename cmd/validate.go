package cmd

import (
	"fmt"

	"apiconnect/internal/connection"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/formatting"
	"apiconnect/internal/tlsclient"
	"apiconnect/internal/validation"
	"apiconnect/pkg/oauth"

	"github.com/spf13/cobra"
)

type validateOptions struct {
	CheckKeyStore bool
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check profiles without contacting the token server",
		Long: `Validate checks the profile file against its schema, then checks every
profile (or only --profile) for the fields its grant type needs. Unless
--check-keystore=false is given, each key store is also opened with its
passwords.

Exit status is 2 when any profile is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.CheckKeyStore, "check-keystore", true, "Open each key store to verify its passwords")
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, opts *validateOptions) error {
	outOpts, err := root.formatOptions()
	if err != nil {
		return err
	}
	refs, err := root.selectProfiles(root.Profile == "")
	if err != nil {
		return err
	}

	rows := make([]formatting.ProfileRow, 0, len(refs))
	invalid := 0
	for _, ref := range refs {
		problem := validateProfile(ref, opts.CheckKeyStore)
		if problem != nil {
			invalid++
		}
		rows = append(rows, formatting.NewProfileRow(ref.Name, ref.Profile, ref.Default, problem))
	}

	if err := formatting.NewFormatter(outOpts).Profiles(cmd.OutOrStdout(), rows); err != nil {
		return err
	}
	if invalid > 0 {
		return errdefs.NewValidationError(errdefs.CheckConfigurationSet,
			fmt.Sprintf("%d of %d profiles are invalid", invalid, len(refs)))
	}
	return nil
}

// validateProfile runs the checks the profile's grant type needs before a
// token exchange.
func validateProfile(ref profileRef, checkKeyStore bool) error {
	cfg, err := buildConfiguration(connection.DefaultFactory(), ref)
	if err != nil {
		return err
	}

	switch cfg.GrantType() {
	case oauth.GrantTypeAuthorizationCode:
		if err := validation.ValidateGeneral(cfg, validation.AllowMissingClientSecret()); err != nil {
			return err
		}
		if err := validation.ValidateAuthCodeAuthorizationURL(cfg); err != nil {
			return err
		}
	default:
		if err := validation.ValidateGeneral(cfg); err != nil {
			return err
		}
	}

	if checkKeyStore {
		if _, _, err := tlsclient.TLSConfig(cfg.Common()); err != nil {
			return err
		}
	}
	return nil
}
