package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, bad := range []string{"", "Pending", "In Review", "accepté", "withdrawn"} {
		_, err := ParseStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestStatus_LabelAndTerminal(t *testing.T) {
	assert.Equal(t, "In Review", StatusInReview.Label())
	assert.Equal(t, "weird", Status("weird").Label())

	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.False(t, StatusAccepted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestKindForStatus(t *testing.T) {
	k, ok := KindForStatus(StatusAccepted)
	assert.True(t, ok)
	assert.Equal(t, KindApplicationAccepted, k)

	_, ok = KindForStatus(StatusPending)
	assert.False(t, ok)
}

func TestListFilter_Normalize(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ListFilter{}.Normalize().Limit)
	assert.Equal(t, MaxListLimit, ListFilter{Limit: 5000}.Normalize().Limit)
	assert.Equal(t, 0, ListFilter{Offset: -3}.Normalize().Offset)
}

func TestNewOutboxEntry(t *testing.T) {
	e, err := NewOutboxEntry(OutboxEvaluateBadges, "app-1", BadgePayload{CandidateID: "c1", Trigger: TriggerApplicationCount})
	require.NoError(t, err)
	assert.Equal(t, OutboxPending, e.Status)

	var p BadgePayload
	require.NoError(t, json.Unmarshal(e.Payload, &p))
	assert.Equal(t, "c1", p.CandidateID)
	assert.Equal(t, TriggerApplicationCount, p.Trigger)

	e, err = NewOutboxEntry(OutboxIndexApplication, "app-1", nil)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(e.Payload))
}
