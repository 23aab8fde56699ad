// Package commands defines the courtiq CLI.
//
// Commands
//
//   - serve     Run the landing page over HTTP and SSH until interrupted
//   - notify    Submit one email to the collection endpoint
//   - theme     Inspect or override a stored SSH theme preference
//
// The root command loads configuration and builds the logger before any
// subcommand runs.
package commands
