package cli

import (
	"context"
	"errors"
	"fmt"
)

// Upload sends local documents to a data source.
//
//	upload <knowledge-base-id> <data-source-id> <file> [file ...]
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: upload <kb> <ds> <files...>")
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	uploaded, rejected, err := a.upload.UploadDocuments(ctx, args[0], args[1], args[2:])
	for _, r := range rejected {
		printWarn(a.out, "skipped "+r+": unsupported file type")
	}
	for _, u := range uploaded {
		printOK(a.out, fmt.Sprintf("uploaded %s as %s (%d bytes)", u.Path, u.Stored, u.Size))
	}
	return err
}
