package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/keshon/snapshot-bot/internal/holders"
)

// Format renders one block per holder, joined by a blank line.
func Format(list []holders.Holder) string {
	blocks := make([]string, len(list))
	for i, h := range list {
		blocks[i] = fmt.Sprintf("Address: %s\nAssets: %d\n\n", h.Address, h.AssetCount)
	}
	return strings.Join(blocks, "\n")
}

// AttachmentName is the file name users see on the reply.
func AttachmentName(policyID string) string {
	return fmt.Sprintf("snapshot_%s.txt", policyID)
}

// reportPath is unique per invocation so concurrent snapshots of the same
// policy never share a file.
func reportPath(dir, policyID, invocationID string) string {
	return filepath.Join(dir, fmt.Sprintf("snapshot_%s_%s.txt", policyID, invocationID))
}

// writeReport creates the report file exclusively and writes content to it.
func writeReport(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
