/*
Package cli provides command-line interface utilities for TileGate.

The cli package includes output formatters, progress reporters, exit-code
mapping, and signal handling used by the tilegate command.

Output Formatting:

Command results render as text, JSON, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For operations over many items, such as validating a directory of chart
configurations:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(files)))
	for i, f := range files {
		check(f)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Exit Codes:

Errors map onto shell exit codes through ExitCode: configuration errors
exit 2, other failures exit 1.

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// ctx is canceled on the first signal; a second signal force-exits
*/
package cli
