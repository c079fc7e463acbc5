package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/livesync"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

const previewLength = 60

// renderState prints st as a numbered list, newest first.
func renderState(w io.Writer, st livesync.State) {
	switch st.Status {
	case livesync.StatusLoading:
		fmt.Fprintln(w, "Loading entries...")
		return
	case livesync.StatusSignedOut:
		fmt.Fprintln(w, st.Message)
		return
	case livesync.StatusFailed:
		fmt.Fprintln(w, st.Message)
		fmt.Fprintln(w, "Type 'retry' to reconnect.")
		if len(st.Entries) > 0 {
			fmt.Fprintln(w, "Last known entries:")
		}
	}

	if st.Status == livesync.StatusReady && len(st.Entries) == 0 {
		fmt.Fprintln(w, "No entries yet. Type 'add' to write one.")
		return
	}
	for i, e := range st.Entries {
		renderEntry(w, i+1, e)
	}
	if st.Status == livesync.StatusReady && st.Message != "" {
		fmt.Fprintln(w, st.Message)
	}
}

func renderEntry(w io.Writer, n int, e journal.Entry) {
	fmt.Fprintf(w, "%3d. %s  %s\n", n, time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04"), e.Title)
	if p := preview(e.Body); p != "" {
		fmt.Fprintf(w, "     %s\n", p)
	}
}

// preview is the first line of body, shortened to previewLength runes.
func preview(body string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	r := []rune(line)
	if len(r) > previewLength {
		return string(r[:previewLength]) + "..."
	}
	return line
}
