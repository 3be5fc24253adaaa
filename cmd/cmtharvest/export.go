package main

import (
	"github.com/fwojciec/cmtharvest/csv"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	ds, err := deps.Runs.FindRecords(deps.Ctx, c.ID)
	if err != nil {
		return report(deps.Stderr, err)
	}
	if _, err := csv.NewSerializer().Serialize(ds, deps.Stdout); err != nil {
		return report(deps.Stderr, err)
	}
	return nil
}
