package main

import (
	"fmt"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/fs"
	"github.com/fwojciec/cmtharvest/harvest"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	corpus, err := fs.ReadCorpusFile(c.Corpus)
	if err != nil {
		return report(deps.Stderr, err)
	}

	res, err := deps.Pipeline.Rebuild(deps.Ctx, corpus)
	if err != nil {
		return report(deps.Stderr, err)
	}

	if s := cmtharvest.FormatWarnings(res.Dataset.Warnings, warningExamples); s != "" {
		fmt.Fprintf(deps.Stderr, "warnings:\n%s\n", s)
	}
	fmt.Fprintf(deps.Stdout, "Parsed %d blocks (%s) into %d records (%d columns)\n",
		corpus.Len(), corpusSize(corpus), res.Dataset.Len(), len(res.Table.Columns))
	return nil
}

// corpusSize reports the size of the corpus file contents.
func corpusSize(c *cmtharvest.Corpus) string {
	if c == nil {
		return harvest.FormatBytes(0)
	}
	return harvest.FormatBytes(len(c.String()))
}
