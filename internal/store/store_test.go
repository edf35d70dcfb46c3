package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsIDAndDefaults(t *testing.T) {
	s := New()
	src, err := s.Add("Oni Contract", "https://example.test/market?item=1", "oni", true)
	require.NoError(t, err)

	assert.NotEmpty(t, src.ID)
	assert.Equal(t, "Oni Contract", src.Name)
	assert.True(t, src.Enabled)
	assert.Nil(t, src.LastCheck)
	assert.Empty(t, src.Baseline)
	assert.Zero(t, src.AlertCount)
	assert.Zero(t, src.LastAlertAt)

	other, err := s.Add("Mud Contract", "https://example.test/market?item=2", "mud", true)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, other.ID)
}

func TestAddRequiresNameAndURL(t *testing.T) {
	s := New()
	_, err := s.Add("", "https://example.test", "", true)
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = s.Add("name", "  ", "", true)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestGetUnknownID(t *testing.T) {
	s := New()
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestListOrderedByName(t *testing.T) {
	s := New()
	_, err := s.Add("bravo", "https://example.test/b", "", true)
	require.NoError(t, err)
	_, err = s.Add("alpha", "https://example.test/a", "", false)
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "bravo", list[1].Name)

	enabled := s.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "bravo", enabled[0].Name)
}

func TestApplyURLChangeResetsBaseline(t *testing.T) {
	s := New()
	src, err := s.Add("item", "https://example.test/old", "", true)
	require.NoError(t, err)

	s.CommitPoll(src.ID, "abc123", 10)

	newURL := "https://example.test/new"
	updated, err := s.Apply(src.ID, Update{URL: &newURL})
	require.NoError(t, err)

	assert.Equal(t, newURL, updated.URL)
	assert.Empty(t, updated.Baseline, "URL change must invalidate the baseline")
	assert.Zero(t, updated.LastBuyCount)
}

func TestApplySameURLKeepsBaseline(t *testing.T) {
	s := New()
	src, err := s.Add("item", "https://example.test/old", "", true)
	require.NoError(t, err)

	s.CommitPoll(src.ID, "abc123", 10)

	sameURL := src.URL
	name := "renamed"
	updated, err := s.Apply(src.ID, Update{Name: &name, URL: &sameURL})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "abc123", updated.Baseline)
	assert.Equal(t, 10, updated.LastBuyCount)
}

func TestApplyEnabledToggle(t *testing.T) {
	s := New()
	src, err := s.Add("item", "https://example.test", "", true)
	require.NoError(t, err)

	off := false
	updated, err := s.Apply(src.ID, Update{Enabled: &off})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Empty(t, s.Enabled())
}

func TestDelete(t *testing.T) {
	s := New()
	src, err := s.Add("item", "https://example.test", "", true)
	require.NoError(t, err)

	require.NoError(t, s.Delete(src.ID))
	assert.ErrorIs(t, s.Delete(src.ID), ErrSourceNotFound)
	_, ok := s.AcquireCheck(src.ID)
	assert.False(t, ok)
}

func TestCommitAndAlertBookkeeping(t *testing.T) {
	s := New()
	src, err := s.Add("item", "https://example.test", "", true)
	require.NoError(t, err)

	now := time.Now().UTC()
	s.MarkChecked(src.ID, now)
	s.CommitPoll(src.ID, "def456", 14)
	s.RecordAlert(src.ID, 100)
	s.RecordAlert(src.ID, 200)

	got, err := s.Get(src.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastCheck)
	assert.Equal(t, now, *got.LastCheck)
	assert.Equal(t, "def456", got.Baseline)
	assert.Equal(t, 14, got.LastBuyCount)
	assert.Equal(t, 2, got.AlertCount)
	assert.Equal(t, int64(200), got.LastAlertAt)
}

func TestAcquireCheckSerializes(t *testing.T) {
	s := New()
	src, err := s.Add("item", "https://example.test", "", true)
	require.NoError(t, err)

	release, ok := s.AcquireCheck(src.ID)
	require.True(t, ok)

	acquired := make(chan struct{})
	go func() {
		r2, ok2 := s.AcquireCheck(src.ID)
		if ok2 {
			r2()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the first is held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should proceed after release")
	}
}
