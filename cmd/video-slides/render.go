package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/r3labs/diff/v3"
	"go.uber.org/zap"

	"github.com/alanbriolat/video-slides/internal/session"
	"github.com/alanbriolat/video-slides/provider/youtube"
)

// renderResult writes the slides indented by two spaces, followed by the comment.
func renderResult(w io.Writer, s session.Succeeded) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, s.Slides, "", "  "); err != nil {
		return fmt.Errorf("malformed slides: %w", err)
	}
	buf.WriteString("\n")
	buf.WriteString(s.Comment)
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func renderSnapshot(snap session.Snapshot) string {
	switch snap.Status {
	case session.StatusLoading:
		return fmt.Sprintf("[%d] loading %s", snap.Generation, snap.Identifier)
	case session.StatusSucceeded:
		return fmt.Sprintf("[%d] succeeded %s", snap.Generation, snap.Identifier)
	case session.StatusFailed:
		return fmt.Sprintf("[%d] %s", snap.Generation, snap.Message)
	default:
		return "idle"
	}
}

// snapshotChanges describes each field that differs between two snapshots.
func snapshotChanges(before, after session.Snapshot) ([]string, error) {
	changelog, err := diff.Diff(before, after)
	if err != nil {
		return nil, err
	}
	changes := make([]string, 0, len(changelog))
	for _, change := range changelog {
		changes = append(changes, fmt.Sprintf("%s: %v -> %v", strings.Join(change.Path, "."), change.From, change.To))
	}
	return changes, nil
}

func logChanges(logger *zap.SugaredLogger, before, after session.Snapshot) {
	changes, err := snapshotChanges(before, after)
	if err != nil {
		logger.Errorf("failed to diff old and new state: %v", err)
		return
	}
	for _, change := range changes {
		logger.Debug(change)
	}
}

func renderHistory(w io.Writer, records []session.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBMITTED\tSTATUS\tIDENTIFIER\tLINK\tDETAIL")
	for _, r := range records {
		detail := r.Error
		if r.Superseded {
			detail = strings.TrimSpace(detail + " (superseded)")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.SubmittedAt.Local().Format(time.RFC3339), r.Status, r.Identifier, r.Link, detail)
	}
	return tw.Flush()
}

func renderInfo(w io.Writer, details *youtube.Info) error {
	_, err := fmt.Fprintf(w, "Title:    %s\nAuthor:   %s\nDuration: %s\nLink:     %s\n",
		details.Title, details.Author, details.Duration, youtube.CanonicalURL(details.ID))
	return err
}
