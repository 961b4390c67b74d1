package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/botadmin/internal/fingerprint"
)

// fingerprintSources is a test seam for the machine identifiers.
var fingerprintSources = fingerprint.DefaultSources

// Fingerprint writes the license request file for this machine.
//
//	fingerprint [output-file]
func (a *App) Fingerprint(ctx context.Context, args []string) error {
	out := fingerprint.DefaultOutputFile
	if len(args) > 0 {
		out = args[0]
	}

	ids := fingerprint.Collect(fingerprintSources())
	if len(ids) == 0 {
		// The request is still written; its hash is that of the empty join.
		printWarn(a.out, "no machine identifiers found")
	}

	req := fingerprint.NewRequest(ids, time.Now())
	if err := fingerprint.WriteRequest(out, req); err != nil {
		return err
	}

	a.log.Info(ctx, "machine fingerprint written", "file", out, "identifiers", len(ids))
	printOK(a.out, "fingerprint "+req.Fingerprint+" written to "+out)
	return nil
}
