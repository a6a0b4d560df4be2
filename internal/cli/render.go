package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"tasktracker/internal/model"
)

const listTitleWidth = 40

func renderTaskList(w io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Status, truncate(t.Title, listTitleWidth), formatTime(t.CreatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var inProgress, completed int
	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusInProgress:
			inProgress++
		case model.TaskStatusCompleted:
			completed++
		}
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d  In Progress: %d  Completed: %d\n", len(tasks), inProgress, completed)
	return err
}

func renderTask(w io.Writer, t *model.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(t.CreatedAt))
	fmt.Fprintf(tw, "Updated:\t%s\n", formatTime(t.UpdatedAt))
	return tw.Flush()
}

func renderUser(w io.Writer, u *model.UserSummary) error {
	_, err := fmt.Fprintf(w, "%s <%s> (id %s)\n", u.Username, u.Email, u.ID)
	return err
}

func renderActivity(w io.Writer, entries []model.Activity) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No activity yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tTASK\tTITLE")
	for _, a := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formatTime(a.OccurredAt), a.Action, a.TaskID, truncate(a.TaskTitle, listTitleWidth))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
