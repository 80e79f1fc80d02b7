package main

import (
	"github.com/dustin/go-humanize"
)

// parseSize converts a human-readable size flag ("100", "512K",
// "1.5GiB") into a byte count.
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
