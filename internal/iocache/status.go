package iocache

import (
	"fmt"

	"github.com/priorityx/priorityx/internal/contract"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status contract.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Total Entries: %d\n", status.EntryCount)
	if status.EntryCount > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.SizeBytes)
}
