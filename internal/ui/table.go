package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/audit"
)

// RenderHistory prints the call history as a table, newest first.
func RenderHistory(entries []audit.Entry) {
	if len(entries) == 0 {
		fmt.Println(MutedStyle.Render("No call history."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Date", "Kind", "Room", "Name", "Peers", "Duration", "Alerts", "Status"})

	for _, e := range entries {
		status := SuccessStyle.Render(strings.ToUpper(e.Status))
		if e.Status != "completed" {
			status = ErrorStyle.Render(strings.ToUpper(e.Status))
		}
		t.AppendRow(table.Row{
			e.Timestamp.Format("2006-01-02 15:04"),
			e.Kind,
			e.Room,
			e.Name,
			e.Peers,
			formatSeconds(e.Duration),
			e.Anomalies,
			status,
		})
	}

	t.Render()
}

// RoomCodeBox renders the share-this-code box shown after creating a room.
func RoomCodeBox(kind, code, sessionID string) string {
	label := kind
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	content := fmt.Sprintf("%s %s created!\n\n%s Code:     %s\n%s Session:  %s",
		IconSuccess, label,
		IconCopy, BoldStyle.Foreground(Primary).Render(code),
		IconRoom, MutedStyle.Render(sessionID),
	)
	return CodeBoxStyle.Render(content)
}

func formatSeconds(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm%ds", int(seconds)/60, int(seconds)%60)
	}
	return fmt.Sprintf("%dh%dm", int(seconds)/3600, (int(seconds)%3600)/60)
}
