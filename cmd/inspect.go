package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-minidump/pkg/app"
	"github.com/deploymenttheory/go-minidump/pkg/app/inspect"
)

var (
	// Region selection
	rangeStart string
	rangeEnd   string
	minSize    string
	maxResults int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [dump-path]",
	Short: "Summarize a minidump: header, stream directory and memory regions",
	Long: `Validate a minidump and report its header, stream directory and the
memory regions rebuilt from its memory-list streams.

Examples:
  # Full report
  go-minidump inspect crash.dmp

  # Regions of at least 64KB between two addresses, as JSON
  go-minidump inspect crash.dmp --start 0x7ff000000000 --end 0x7fff00000000 --min-size 64KB -o json`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0], true, true)
	},
}

var streamsCmd = &cobra.Command{
	Use:   "streams [dump-path]",
	Short: "List the stream directory of a minidump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0], true, false)
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions [dump-path]",
	Short: "List memory regions reconstructed from a minidump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0], false, true)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd, streamsCmd, regionsCmd)

	for _, c := range []*cobra.Command{inspectCmd, regionsCmd} {
		c.Flags().StringVar(&rangeStart, "start", "", "lowest region address to report (0x-prefixed or decimal)")
		c.Flags().StringVar(&rangeEnd, "end", "", "address at which reporting stops")
		c.Flags().StringVar(&minSize, "min-size", "", "minimum region size (4KB, 1MB)")
		c.Flags().IntVar(&maxResults, "limit", 1000, "maximum regions to report")
	}
}

func runInspect(dumpPath string, includeStreams, includeRegions bool) error {
	ctx := newContext()

	addrRange, err := parseRange(rangeStart, rangeEnd)
	if err != nil {
		return err
	}

	limit := maxResults
	if limit == 0 {
		limit = 1000
	}

	request := &inspect.Request{
		DumpPath:       dumpPath,
		Range:          addrRange,
		MinSize:        minSize,
		MaxResults:     limit,
		IncludeStreams: includeStreams,
		IncludeRegions: includeRegions,
	}

	factory, err := newFactory()
	if err != nil {
		return err
	}

	response, err := inspect.Handle(ctx, factory.MinidumpService(), request)
	if err != nil {
		return err
	}

	if ctx.Verbose && !ctx.Quiet {
		fmt.Fprintln(ctx.Stderr, inspect.FormatSummary(response))
	}
	return inspect.FormatOutput(ctx.Stdout, response, ctx.OutputFormat)
}

// parseRange converts the --start and --end flags to an address range
func parseRange(start, end string) (app.AddressRange, error) {
	var r app.AddressRange
	var err error
	if start != "" {
		if r.Start, err = app.ParseAddress(start); err != nil {
			return r, app.NewError(app.ErrCodeInvalidInput, "invalid --start", err)
		}
	}
	if end != "" {
		if r.End, err = app.ParseAddress(end); err != nil {
			return r, app.NewError(app.ErrCodeInvalidInput, "invalid --end", err)
		}
	}
	return r, nil
}
