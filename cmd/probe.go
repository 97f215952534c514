package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-minidump/internal/device"
	"github.com/deploymenttheory/go-minidump/pkg/app"
)

var probeCmd = &cobra.Command{
	Use:   "probe [file-path]",
	Short: "Identify which registered format a file belongs to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe(args[0])
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(path string) error {
	ctx := newContext()

	factory, err := newFactory()
	if err != nil {
		return err
	}
	prober := factory.Prober()
	ctx.Log(fmt.Sprintf("Probing %s against: %s", path, strings.Join(prober.Formats(), ", ")))

	file, err := device.OpenDumpFile(path)
	if err != nil {
		return app.NewError(app.ErrCodeContainerAccess, "failed to open file", err)
	}
	defer file.Close()

	handle, err := prober.Probe(file)
	if err != nil {
		return app.NewError(app.ErrCodeNotMinidump, fmt.Sprintf("%s was not recognized", path), err)
	}
	defer handle.Close()

	fmt.Fprintf(ctx.Stdout, "%s: %s, %d regions\n", path, handle.Format(), len(handle.Regions()))
	if ctx.Verbose {
		file.PrintStats(ctx.Stderr)
	}
	return nil
}
