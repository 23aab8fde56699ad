package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"courtiq-landing/internal/logging"
	"courtiq-landing/internal/notifier"
	"courtiq-landing/internal/signup"
)

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <email>",
		Short: "Submit one email to the collection endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cfg.NotifierOptions()
			opts.Logger = logging.Component(logger, "notifier")
			client, err := notifier.New(opts)
			if err != nil {
				return err
			}

			var form signup.Form
			form.SetEmail(args[0])
			err = form.Submit(cmd.Context(), client)

			out := cmd.OutOrStdout()
			if errors.Is(err, signup.ErrInvalidEmail) {
				fmt.Fprintln(out, signup.MessageInvalid)
				return err
			}
			fmt.Fprintf(out, "status: %s\n", form.CurrentStatus())
			if msg := form.Message(); msg != "" {
				fmt.Fprintln(out, msg)
			}
			return err
		},
	}
}
