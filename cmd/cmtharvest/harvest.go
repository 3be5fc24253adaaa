package main

import (
	"fmt"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/harvest"
)

// warningExamples is the number of example warnings printed after a run.
const warningExamples = 5

// Run executes the harvest command.
func (c *HarvestCmd) Run(deps *Dependencies) error {
	years := cmtharvest.YearRange{Start: c.Start, End: c.End}
	if err := years.Validate(); err != nil {
		return report(deps.Stderr, err)
	}

	fmt.Fprintf(deps.Stdout, "Harvesting %s...\n", harvest.FormatYears(c.Start, c.End))

	res, err := deps.Pipeline.Run(deps.Ctx, years, func(ev harvest.ProgressEvent) {
		switch ev.Type {
		case harvest.ProgressPage:
			fmt.Fprintf(deps.Stdout, "  page %d: %d blocks (%d total)\n", ev.Page.Page, ev.Page.Blocks, ev.Page.TotalBlocks)
		case harvest.ProgressParsed:
			fmt.Fprintf(deps.Stdout, "Parsed %d records (%d warnings)\n", ev.Records, ev.Warnings)
		case harvest.ProgressWritten:
			if ev.Table != nil {
				fmt.Fprintf(deps.Stdout, "Wrote %d rows x %d columns\n", ev.Table.Rows, len(ev.Table.Columns))
			}
		}
	})

	if res != nil && res.Dataset != nil {
		if s := cmtharvest.FormatWarnings(res.Dataset.Warnings, warningExamples); s != "" {
			fmt.Fprintf(deps.Stderr, "warnings:\n%s\n", s)
		}
	}

	if err != nil {
		if res.Partial() {
			fmt.Fprintf(deps.Stderr, "Harvest stopped early; partial results written to %s\n", deps.Pipeline.TablePath)
		}
		return report(deps.Stderr, err)
	}

	if res.Run != nil {
		fmt.Fprintf(deps.Stdout, "Run %s: %d pages, %d blocks (%s), %d records -> %s\n",
			res.Run.ID, res.Run.Pages, res.Run.Blocks, corpusSize(res.Corpus), res.Run.Records, res.Run.TablePath)
	}
	return nil
}
