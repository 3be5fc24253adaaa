package main

import (
	"fmt"

	"github.com/fwojciec/cmtharvest"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		return report(deps.Stderr, cmtharvest.Errorf(cmtharvest.EINVALID, "use --force to confirm deletion"))
	}

	if err := deps.Runs.DeleteRun(deps.Ctx, c.ID); err != nil {
		if cmtharvest.ErrorCode(err) == cmtharvest.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'cmtharvest runs' to list runs.\n", c.ID)
			return err
		}
		return report(deps.Stderr, err)
	}

	fmt.Fprintf(deps.Stdout, "Deleted run %s\n", c.ID)
	return nil
}
