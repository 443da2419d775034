package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/ledgervault/internal/filex"
)

// upload sends a local file to the server. The second argument, if
// present, overrides the name recorded in the ledger.
func (a *App) upload(ctx context.Context, args []string) {
	path := args[0]
	name := filepath.Base(path)
	if len(args) > 1 {
		name = args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer f.Close()

	id, err := a.api.Upload(ctx, name, f)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Uploaded %s, file id: %s\n", name, id)
}

// download fetches a file by id and saves it under the configured
// download directory, creating the directory if needed.
func (a *App) download(ctx context.Context, id string) {
	name, data, err := a.api.Download(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	dir, err := filex.EnsureSubdDir(a.config.DownloadDir)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	// filepath.Base guards against a hostile filename in the header.
	dest := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(dest, data, 0o660); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", dest, len(data))
}

func (a *App) list(ctx context.Context) {
	files, err := a.api.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files uploaded yet")
		return
	}
	for _, f := range files {
		fmt.Fprintf(a.out, "%s  %10d  %s  %s\n",
			f.CreatedAt.Format("2006-01-02 15:04:05"), f.SizeBytes, f.FileID, f.Filename)
	}
}
