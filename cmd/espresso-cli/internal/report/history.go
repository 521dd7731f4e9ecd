package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/gookit/color"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
)

const timeLayout = "2006-01-02 15:04:05"

// Chronological returns at most limit of the given newest-first messages,
// oldest first. A non-positive limit keeps all of them.
func Chronological(newestFirst []domain.StoredMessage, limit int) []domain.StoredMessage {
	msgs := newestFirst
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := slices.Clone(msgs)
	slices.Reverse(out)
	return out
}

// Header renders a section title, coloured when colours is true.
func Header(title string, colours bool) string {
	header := fmt.Sprintf("  ====== %s ======", title)
	if colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	return header
}

// WriteHistory prints a room's messages as a table.
func WriteHistory(w io.Writer, room string, msgs []domain.StoredMessage, colours bool) {
	fmt.Fprintln(w, Header(fmt.Sprintf("%s (%d messages)", room, len(msgs)), colours))
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No stored messages.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "User", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, m := range msgs {
		table.Append([]string{m.Timestamp.Local().Format(timeLayout), m.Username, m.Text})
	}
	table.Render()
}

// ExportJSONLines writes one JSON object per message to path on fs.
func ExportJSONLines(fs afero.Fs, path string, msgs []domain.StoredMessage) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, m := range msgs {
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
