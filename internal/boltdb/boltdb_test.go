package boltdb

import (
	"path/filepath"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/alanbriolat/video-slides/internal/session"
)

func TestDatabase(t *testing.T) {
	assert := assert_.New(t)
	path := filepath.Join(t.TempDir(), "history.bolt")

	db, err := New(path)
	require.NoError(t, err)

	records, err := db.ListSubmissions()
	assert.NoError(err)
	assert.Empty(records)

	now := time.Now().UTC().Truncate(time.Second)
	later := &session.Record{
		ID:          "b",
		Generation:  2,
		Link:        "https://youtu.be/abc123",
		Identifier:  "abc123",
		Status:      session.StatusSucceeded,
		SubmittedAt: now.Add(time.Minute),
		FinishedAt:  now.Add(2 * time.Minute),
	}
	earlier := &session.Record{
		ID:          "a",
		Generation:  1,
		Link:        "not a url",
		Status:      session.StatusFailed,
		Error:       "Failed to generate slides: boom",
		Superseded:  true,
		SubmittedAt: now,
		FinishedAt:  now.Add(3 * time.Minute),
	}
	require.NoError(t, db.WriteSubmission(later))
	require.NoError(t, db.WriteSubmission(earlier))

	records, err = db.ListSubmissions()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(*earlier, records[0])
	assert.Equal(*later, records[1])

	// Writing the same ID again replaces the record
	earlier.Error = "Failed to generate comment: boom"
	require.NoError(t, db.WriteSubmission(earlier))
	records, err = db.ListSubmissions()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal("Failed to generate comment: boom", records[0].Error)

	// Records survive reopening
	require.NoError(t, db.Close())
	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	records, err = db.ListSubmissions()
	require.NoError(t, err)
	assert.Len(records, 2)
}

func TestNewRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.bolt")
	raw, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, raw.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(Buckets.Metadata)
		if err != nil {
			return err
		}
		return b.Put(MetadataKeys.Version, []byte("99"))
	}))
	require.NoError(t, raw.Close())

	_, err = New(path)
	require.Error(t, err)
	assert_.Contains(t, err.Error(), "unsupported history version 99")
}
