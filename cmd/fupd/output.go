package main

import (
	"context"
	"os"
	"path/filepath"

	"fupd/pkg/workers"
)

// writeAtomic writes content to <dir>/<hostname>.txt by writing a sibling
// .tmp file and renaming it into place, so a reader never observes a
// partially written configuration. A transient rename failure (e.g. a
// cross-device link error from a misconfigured outputdir, or a momentary
// permission race) is retried a few times before giving up.
func writeAtomic(dir, hostname, content string) error {
	final := filepath.Join(dir, hostname+".txt")
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}

	return workers.Retry(context.Background(), workers.DefaultRetryConfig(), func() error {
		return os.Rename(tmp, final)
	})
}
