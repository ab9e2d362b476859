package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanbriolat/video-slides/internal/session"
	"github.com/alanbriolat/video-slides/internal/slides"
	"github.com/alanbriolat/video-slides/provider/youtube"
)

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	err := renderResult(&buf, session.Succeeded{
		Identifier: "abc123",
		Slides:     slides.Slides(`{"0":{"title":"cover"}}`),
		Comment:    "nice video",
	})
	require.NoError(t, err)
	assert_.Equal(t, "{\n  \"0\": {\n    \"title\": \"cover\"\n  }\n}\nnice video\n", buf.String())

	err = renderResult(&buf, session.Succeeded{Slides: slides.Slides(`{`)})
	assert_.Error(t, err)
}

func TestRenderSnapshot(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("idle", renderSnapshot(session.Snapshot{Status: session.StatusIdle}))
	assert.Equal("[2] loading abc123", renderSnapshot(session.Snapshot{
		Generation: 2, Status: session.StatusLoading, Identifier: "abc123",
	}))
	assert.Equal("[2] succeeded abc123", renderSnapshot(session.Snapshot{
		Generation: 2, Status: session.StatusSucceeded, Identifier: "abc123", Comment: "nice",
	}))
	assert.Equal("[3] Invalid YouTube link. Please try again.", renderSnapshot(session.Snapshot{
		Generation: 3, Status: session.StatusFailed, Message: session.MessageInvalidLink,
	}))
}

func TestSnapshotChanges(t *testing.T) {
	assert := assert_.New(t)
	old := session.Snapshot{Generation: 1, Status: session.StatusLoading, Identifier: "abc123"}
	after := old
	after.Status = session.StatusSucceeded
	after.Comment = "nice"

	changes, err := snapshotChanges(old, after)
	require.NoError(t, err)
	assert.Len(changes, 2)
	assert.Contains(changes, "Status: loading -> succeeded")
	assert.Contains(changes, "Comment:  -> nice")

	changes, err = snapshotChanges(old, old)
	require.NoError(t, err)
	assert.Empty(changes)
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	err := renderHistory(&buf, []session.Record{
		{
			Link:        "https://youtu.be/abc123",
			Identifier:  "abc123",
			Status:      session.StatusFailed,
			Error:       "Failed to generate slides: boom",
			Superseded:  true,
			SubmittedAt: time.Now(),
		},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert_.True(t, strings.HasPrefix(lines[0], "SUBMITTED"))
	assert_.Contains(t, lines[1], "abc123")
	assert_.Contains(t, lines[1], "Failed to generate slides: boom (superseded)")
}

func TestRenderInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderInfo(&buf, &youtube.Info{
		ID:       "abc123",
		Title:    "Some talk",
		Author:   "Someone",
		Duration: 90 * time.Second,
	}))
	assert_.Equal(t, "Title:    Some talk\n"+
		"Author:   Someone\n"+
		"Duration: 1m30s\n"+
		"Link:     "+youtube.CanonicalURL("abc123")+"\n", buf.String())
}
