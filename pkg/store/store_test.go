package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackhealth/pkg/health"
)

func sampleEntry() Entry {
	id := health.Identity{Type: "maven", Namespace: "org.slf4j", Name: "slf4j-api", Version: "2.0.9"}
	rec := health.NewRecord(id)
	rec.Stars = health.Ptr(2300)
	rec.CommitFrequencyWeekly = health.Ptr(5.0)
	rec.ScorecardScore = health.Ptr(6.2)
	rec.HasReadme = health.Ptr(true)
	rec.LastCommit = health.Ptr(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))
	rec.ScorecardChecks = []health.ScorecardCheck{{Name: "Fuzzing", Score: 0, Details: []string{"none"}}}
	return Entry{Record: rec, AnalyzedAt: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)}
}

func TestNullStore(t *testing.T) {
	var s Store = NullStore{}
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleEntry()))
	_, err := s.Load(ctx, sampleEntry().Record.Identity())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Close(ctx))
}

func TestDocumentConversion(t *testing.T) {
	e := sampleEntry()

	doc, err := toDocument(e)
	require.NoError(t, err)
	assert.Equal(t, "pkg:maven/org.slf4j/slf4j-api@2.0.9", doc.ID)
	assert.Equal(t, "slf4j-api", doc.Name)
	assert.Contains(t, doc.Record, "stars")
	assert.NotContains(t, doc.Record, "forks")

	back, err := fromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, e.AnalyzedAt, back.AnalyzedAt)
	assert.Equal(t, e.Record.Identity(), back.Record.Identity())
	assert.Equal(t, e.Record.SetFields(), back.Record.SetFields())
	assert.Equal(t, 2300, *back.Record.Stars)
	assert.Equal(t, 5.0, *back.Record.CommitFrequencyWeekly)
	assert.True(t, back.Record.LastCommit.Equal(*e.Record.LastCommit))
	assert.Equal(t, e.Record.ScorecardChecks, back.Record.ScorecardChecks)
}
