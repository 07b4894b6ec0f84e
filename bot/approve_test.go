package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestParseApproveCommand(t *testing.T) {
	cases := []struct {
		text string
		id   int64
		ok   bool
	}{
		{"/approve_123", 123, true},
		{"  /approve_42  ", 42, true},
		{"/approve_", 0, false},
		{"/approve_0", 0, false},
		{"/approve_-5", 0, false},
		{"/approve_12abc", 0, false},
		{"/approve_12 34", 0, false},
		{"/approve", 0, false},
		{"approve_123", 0, false},
		{"/start", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		id, ok := ParseApproveCommand(tc.text)
		assert.Equal(t, tc.ok, ok, "text %q", tc.text)
		assert.Equal(t, tc.id, id, "text %q", tc.text)
	}
}

func TestApproveMatcherRoutesOnlyApproveText(t *testing.T) {
	app := testApp(t, &stubGateway{})
	m := approveMatcher{app: app}

	name, h, ok := m.Match("/approve_7")
	require.True(t, ok)
	require.NotNil(t, h)
	assert.Equal(t, "approve", name)

	_, _, ok = m.Match("candy")
	assert.False(t, ok)
}

func TestHandleApproveFromAdmin(t *testing.T) {
	app := testApp(t, &stubGateway{})
	c := newFakeContext(42) // the configured admin

	require.NoError(t, app.handleApprove(c, 100))

	entitled, err := app.store.IsEntitled(context.Background(), 100, time.Now())
	require.NoError(t, err)
	assert.True(t, entitled)

	entitled, err = app.store.IsEntitled(context.Background(), 100, time.Now().Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, entitled, "grant must be time-boxed")

	// Target gets notified out of band, the admin in the same chat.
	require.Len(t, c.api.sent, 1)
	assert.Equal(t, tele.ChatID(100), c.api.sent[0].to)
	assert.Contains(t, c.lastText(), "user 100")
}

func TestHandleApproveClearsAwaitingFlag(t *testing.T) {
	app := testApp(t, &stubGateway{})
	require.NoError(t, app.store.SetAwaitingProof(context.Background(), 100, true))

	c := newFakeContext(42)
	require.NoError(t, app.handleApprove(c, 100))

	awaiting, err := app.store.AwaitingProof(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, awaiting)
}

func TestHandleApproveFromNonAdminIsIgnored(t *testing.T) {
	app := testApp(t, &stubGateway{})
	c := newFakeContext(100)

	require.NoError(t, app.handleApprove(c, 100))

	entitled, err := app.store.IsEntitled(context.Background(), 100, time.Now())
	require.NoError(t, err)
	assert.False(t, entitled)

	// Silent: no reply, no notification.
	assert.Empty(t, c.sent)
	assert.Empty(t, c.api.sent)
}

func TestApprovedUserTransformsWithoutConsuming(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)

	admin := newFakeContext(42)
	require.NoError(t, app.handleApprove(admin, 100))

	sel := newFakeContext(100)
	sel.text = "mosaic"
	require.NoError(t, app.handleStyleText(sel))

	for i := 0; i < 3; i++ {
		require.NoError(t, app.handlePhoto(newFakeContextWithPhoto(100)))
	}

	assert.Equal(t, []string{"mosaic", "mosaic", "mosaic"}, gw.styles)
}
