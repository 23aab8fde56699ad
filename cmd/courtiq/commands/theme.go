package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"courtiq-landing/internal/store"
	"courtiq-landing/internal/theme"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Inspect or override stored SSH theme preferences",
	}
	cmd.AddCommand(themeGetCmd(), themeSetCmd(), themeClearCmd())
	return cmd
}

func openRepo(cmd *cobra.Command) (*store.Repository, error) {
	return store.Open(cmd.Context(), cfg.DBPath)
}

func themeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <subject>",
		Short: "Print the stored theme for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			pref, err := repo.GetPreference(cmd.Context(), args[0])
			if errors.Is(err, theme.ErrNoPreference) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no stored preference\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (updated %s)\n", pref.Subject, pref.Mode, pref.UpdatedAt)
			return nil
		},
	}
}

func themeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <subject> <dark|light>",
		Short: "Store a theme for a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := theme.ParseMode(args[1])
			if err != nil {
				return err
			}

			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.SaveMode(cmd.Context(), args[0], mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], mode)
			return nil
		},
	}
}

func themeClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <subject>",
		Short: "Forget a subject's theme so the terminal background decides again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeletePreference(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cleared\n", args[0])
			return nil
		},
	}
}
