package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/harvest"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := cmtharvest.RunFilter{Limit: c.Limit}
	if c.Outcome != "" {
		outcome := cmtharvest.Outcome(c.Outcome)
		switch outcome {
		case cmtharvest.OutcomeComplete, cmtharvest.OutcomePartial, cmtharvest.OutcomeFailed:
		default:
			return report(deps.Stderr, cmtharvest.Errorf(cmtharvest.EINVALID, "unknown outcome %q", c.Outcome))
		}
		filter.Outcome = &outcome
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		return report(deps.Stderr, err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'cmtharvest harvest' to record one.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tYEARS\tOUTCOME\tPAGES\tRECORDS\tWARNINGS\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, harvest.FormatYears(r.StartYear, r.EndYear), r.Outcome,
			r.Pages, r.Records, r.Warnings, r.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
