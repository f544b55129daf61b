package cli

import (
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"welcomecraft/internal/domain"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

// statusText colors a job status when colors are enabled.
func statusText(status string, useColors bool) string {
	if !useColors {
		return status
	}
	switch status {
	case domain.JobStatusCompleted:
		return color.GreenString(status)
	case domain.JobStatusFailed:
		return color.RedString(status)
	case domain.JobStatusProcessing:
		return color.YellowString(status)
	default:
		return status
	}
}

func emptyDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
