package inspect

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FormatOutput writes an inspection report in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatReadOutput writes captured memory in the requested format
func FormatReadOutput(w io.Writer, response *ReadResponse, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		fmt.Fprintf(w, "%d bytes at 0x%016x\n", response.Length, response.Address)
		_, err := io.WriteString(w, hex.Dump(response.Data))
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable formats a report as tables
func formatTable(w io.Writer, response *Response) error {
	info := response.Dump

	fmt.Fprintf(w, "File:       %s (%s)\n", info.Path, formatBytes(uint64(info.Size)))
	fmt.Fprintf(w, "Format:     %s version 0x%04x\n", info.Signature, info.Version)
	fmt.Fprintf(w, "Timestamp:  %s\n", info.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Flags:      0x%x\n", info.Flags)
	fmt.Fprintf(w, "Streams:    %d\n", info.StreamCount)
	fmt.Fprintf(w, "Regions:    %d (%s captured)\n", response.TotalRegions, formatBytes(info.TotalCaptured))

	if len(info.Streams) > 0 {
		fmt.Fprintf(w, "\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "IDX\tTYPE\tNAME\tKIND\tSIZE\tRVA\n")
		fmt.Fprintf(tw, "---\t----\t----\t----\t----\t---\n")
		for _, s := range info.Streams {
			fmt.Fprintf(tw, "%d\t0x%08x\t%s\t%s\t%d\t0x%08x\n",
				s.Index, s.Type, s.TypeName, s.Kind, s.DataSize, s.Rva)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(info.Regions) > 0 {
		fmt.Fprintf(w, "\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "IDX\tNAME\tVMA\tSIZE\tFILE OFF\tALGN\tFLAGS\n")
		fmt.Fprintf(tw, "---\t----\t---\t----\t--------\t----\t-----\n")
		for _, r := range info.Regions {
			fmt.Fprintf(tw, "%d\t%s\t%016x\t%08x\t%08x\t2**%d\t%s\n",
				r.Index, r.Name, r.VirtualAddress, r.Size, r.FileOffset, r.AlignmentPower, r.Flags)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if response.Truncated {
			fmt.Fprintf(w, "(showing first %d regions)\n", len(info.Regions))
		}
	}

	if len(info.Issues) > 0 {
		fmt.Fprintf(w, "\nPartially decoded streams:\n")
		for _, issue := range info.Issues {
			fmt.Fprintf(w, "  #%d %s: %s\n", issue.Index, issue.TypeName, issue.Reason)
		}
	}

	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatYAML formats a value as YAML
func formatYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(v)
}

// FormatSummary provides a brief summary for verbose output
func FormatSummary(response *Response) string {
	if response.TotalRegions == 0 {
		return "No memory regions recovered"
	}

	summary := fmt.Sprintf("Recovered %d region", response.TotalRegions)
	if response.TotalRegions != 1 {
		summary += "s"
	}
	if response.Truncated {
		summary += fmt.Sprintf(" (showing %d)", len(response.Dump.Regions))
	}

	classes := make(map[SizeClass]int)
	for _, r := range response.Dump.Regions {
		classes[GetSizeClass(r.Size)]++
	}

	summary += fmt.Sprintf(" totaling %s", formatBytes(response.Dump.TotalCaptured))
	if n := classes[SizeClassLarge]; n > 0 {
		summary += fmt.Sprintf(", %d large", n)
	}
	if n := len(response.Dump.Issues); n > 0 {
		summary += fmt.Sprintf(", %d partially decoded stream", n)
		if n != 1 {
			summary += "s"
		}
	}
	return summary
}
