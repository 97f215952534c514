package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-minidump/pkg/app/inspect"
)

var (
	readRegion  int
	readAddress string
	readLength  uint32
)

var readCmd = &cobra.Command{
	Use:   "read [dump-path]",
	Short: "Dump captured memory by region index or virtual address",
	Long: `Print captured memory bytes from a minidump.

Examples:
  # Whole of region 3
  go-minidump read crash.dmp --region 3

  # 64 bytes at a virtual address
  go-minidump read crash.dmp --address 0x7ff6a0001000 --length 64`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(args[0])
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntVar(&readRegion, "region", 0, "region index to read")
	readCmd.Flags().StringVar(&readAddress, "address", "", "virtual address to read from")
	readCmd.Flags().Uint32Var(&readLength, "length", 256, "bytes to read at --address")

	readCmd.MarkFlagsMutuallyExclusive("region", "address")
}

func runRead(dumpPath string) error {
	ctx := newContext()

	factory, err := newFactory()
	if err != nil {
		return err
	}

	response, err := inspect.HandleRead(ctx, factory.MinidumpService(), &inspect.ReadRequest{
		DumpPath:    dumpPath,
		RegionIndex: readRegion,
		Address:     readAddress,
		Length:      readLength,
	})
	if err != nil {
		return err
	}

	return inspect.FormatReadOutput(ctx.Stdout, response, ctx.OutputFormat)
}
