package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/nfrund/espresso/internal/topicmgr"
	"github.com/olekukonko/tablewriter"
)

// TopicDisplay represents a topic for display purposes.
type TopicDisplay struct {
	Name        string         `json:"name"`
	Scope       string         `json:"scope"`
	Module      string         `json:"module"`
	Description string         `json:"description"`
	Example     string         `json:"example"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func toDisplay(t topicmgr.Topic) TopicDisplay {
	return TopicDisplay{
		Name:        t.Name(),
		Scope:       string(t.Scope()),
		Module:      t.Module(),
		Description: t.Description(),
		Example:     t.Example(),
		Metadata:    t.Metadata(),
	}
}

// WriteTopicsTable displays topics in a table.
func WriteTopicsTable(w io.Writer, topics []topicmgr.Topic) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Scope", "Module", "Description"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, t := range topics {
		module := t.Module()
		if module == "" {
			module = "-"
		}
		table.Append([]string{t.Name(), string(t.Scope()), module, truncate(t.Description(), 50)})
	}
	table.Render()
}

// WriteTopicsJSON displays topics as a JSON document.
func WriteTopicsJSON(w io.Writer, topics []topicmgr.Topic) error {
	displays := make([]TopicDisplay, 0, len(topics))
	for _, t := range topics {
		displays = append(displays, toDisplay(t))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Topics []TopicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}{Topics: displays, Count: len(displays)})
}

// WriteTopicDetails prints every field of one topic.
func WriteTopicDetails(w io.Writer, t topicmgr.Topic) {
	fmt.Fprintf(w, "Name:        %s\n", t.Name())
	fmt.Fprintf(w, "Scope:       %s\n", t.Scope())
	fmt.Fprintf(w, "Module:      %s\n", t.Module())
	fmt.Fprintf(w, "Description: %s\n", t.Description())
	fmt.Fprintf(w, "Example:     %s\n", t.Example())
	meta := t.Metadata()
	if len(meta) > 0 {
		fmt.Fprintln(w, "Metadata:")
	}
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		fmt.Fprintf(w, "  %s: %v\n", k, meta[k])
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
