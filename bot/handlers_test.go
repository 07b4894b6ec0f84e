package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/okunev/stylebot/core/config"
	"github.com/okunev/stylebot/core/logger"
	"github.com/okunev/stylebot/session"
	"github.com/okunev/stylebot/styles"
	"github.com/okunev/stylebot/transform"
)

func TestMain(m *testing.M) {
	cfg := &coreconfig.Config{}
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "kv"
	if err := logger.InitLogger(cfg); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = logger.Shutdown()
	os.Exit(code)
}

type sentTo struct {
	to   tele.Recipient
	what interface{}
}

type fakeAPI struct {
	tele.API
	mu   sync.Mutex
	sent []sentTo
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentTo{to: to, what: what})
	return &tele.Message{}, nil
}

// fakeContext implements the slice of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context
	api  *fakeAPI
	user *tele.User
	msg  *tele.Message
	text string
	vals map[string]interface{}
	sent []interface{}
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		api:  &fakeAPI{},
		user: &tele.User{ID: userID},
		vals: make(map[string]interface{}),
	}
}

func (f *fakeContext) Bot() tele.API        { return f.api }
func (f *fakeContext) Sender() *tele.User   { return f.user }
func (f *fakeContext) Chat() *tele.Chat     { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Message() *tele.Message { return f.msg }
func (f *fakeContext) Text() string         { return f.text }
func (f *fakeContext) Update() tele.Update  { return tele.Update{ID: 1, Message: f.msg} }
func (f *fakeContext) Get(k string) interface{} { return f.vals[k] }
func (f *fakeContext) Set(k string, v interface{}) { f.vals[k] = v }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) lastText() string {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if s, ok := f.sent[i].(string); ok {
			return s
		}
	}
	return ""
}

func (f *fakeContext) sentPhoto() bool {
	for _, what := range f.sent {
		if _, ok := what.(*tele.Photo); ok {
			return true
		}
	}
	return false
}

type fakeFiles struct {
	data []byte
	err  error
}

func (f fakeFiles) File(_ *tele.File) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type stubGateway struct {
	out    []byte
	err    error
	styles []string
}

func (g *stubGateway) Transform(_ context.Context, _ []byte, style string) ([]byte, error) {
	g.styles = append(g.styles, style)
	if g.err != nil {
		return nil, g.err
	}
	return g.out, nil
}

func testApp(t *testing.T, gw transform.Gateway) *App {
	t.Helper()

	cfg := &coreconfig.Config{}
	cfg.Telegram.AdminID = 42
	cfg.Payment.Link = "https://pay.example.com"
	cfg.Payment.EntitlementHours = 24
	cfg.Transform.TimeoutSeconds = 60

	app, err := New(cfg, session.NewMemoryStore(), styles.NewCatalog(styles.DefaultStyles()), gw)
	require.NoError(t, err)
	app.files = fakeFiles{data: []byte("source-image")}
	return app
}

func photoMessage(fileID string) *tele.Message {
	return &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: fileID}}}
}

func TestHandleStyleTextKnown(t *testing.T) {
	app := testApp(t, &stubGateway{})
	c := newFakeContext(100)
	c.text = "rain princess"

	require.NoError(t, app.handleStyleText(c))

	style, ok, err := app.store.Style(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rain_princess", style)
	assert.Contains(t, c.lastText(), "Rain Princess")
}

func TestHandleStyleTextUnknown(t *testing.T) {
	app := testApp(t, &stubGateway{})
	c := newFakeContext(100)
	c.text = "watercolor"

	require.NoError(t, app.handleStyleText(c))

	_, ok, err := app.store.Style(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, c.lastText(), "Candy")
}

func TestHandlePhotoWithoutStyle(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)
	c := newFakeContext(100)
	c.msg = photoMessage("file-1")

	require.NoError(t, app.handlePhoto(c))

	assert.Empty(t, gw.styles)
	assert.Equal(t, msgSelectStyleFirst, c.lastText())
}

func TestHandlePhotoConsumesFreeUse(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)
	require.NoError(t, app.store.SetStyle(context.Background(), 100, "candy"))

	c := newFakeContext(100)
	c.msg = photoMessage("file-1")

	require.NoError(t, app.handlePhoto(c))

	assert.Equal(t, []string{"candy"}, gw.styles)
	assert.True(t, c.sentPhoto())

	_, ok, err := app.store.Style(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, ok, "free use must clear the selection")
	assert.Contains(t, c.lastText(), "https://pay.example.com")
}

func TestHandlePhotoEntitledKeepsStyle(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)
	require.NoError(t, app.store.SetStyle(context.Background(), 100, "udnie"))
	require.NoError(t, app.store.GrantEntitlement(context.Background(), 100, time.Hour))

	c := newFakeContext(100)
	c.msg = photoMessage("file-1")

	require.NoError(t, app.handlePhoto(c))
	require.NoError(t, app.handlePhoto(newFakeContextWithPhoto(100)))

	assert.Equal(t, []string{"udnie", "udnie"}, gw.styles)

	style, ok, err := app.store.Style(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "udnie", style)
}

func newFakeContextWithPhoto(userID int64) *fakeContext {
	c := newFakeContext(userID)
	c.msg = photoMessage("file-n")
	return c
}

func TestHandlePhotoEntitledWithoutStyle(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)
	require.NoError(t, app.store.GrantEntitlement(context.Background(), 100, time.Hour))

	c := newFakeContextWithPhoto(100)

	require.NoError(t, app.handlePhoto(c))

	assert.Empty(t, gw.styles)
	assert.Equal(t, msgSelectStyleFirst, c.lastText())
}

func TestHandlePhotoTransformFailureKeepsStyle(t *testing.T) {
	gw := &stubGateway{err: &transform.Error{Style: "candy", Reason: "down"}}
	app := testApp(t, gw)
	require.NoError(t, app.store.SetStyle(context.Background(), 100, "candy"))

	c := newFakeContextWithPhoto(100)

	err := app.handlePhoto(c)
	require.Error(t, err)
	assert.Equal(t, msgTransformFailed, c.lastText())

	style, ok, serr := app.store.Style(context.Background(), 100)
	require.NoError(t, serr)
	require.True(t, ok)
	assert.Equal(t, "candy", style)
}

func TestHandlePhotoFetchFailureKeepsStyle(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)
	app.files = fakeFiles{err: errors.New("telegram down")}
	require.NoError(t, app.store.SetStyle(context.Background(), 100, "candy"))

	c := newFakeContextWithPhoto(100)

	err := app.handlePhoto(c)
	require.Error(t, err)

	var f *fault
	require.True(t, errors.As(err, &f))
	assert.Equal(t, "FILE_FETCH_ERROR", f.Code())
	assert.Equal(t, msgFetchFailed, c.lastText())

	_, ok, serr := app.store.Style(context.Background(), 100)
	require.NoError(t, serr)
	assert.True(t, ok)
}

func TestPayThenPhotoForwardsProof(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)

	c := newFakeContext(100)
	require.NoError(t, app.handlePay(c))
	assert.Contains(t, c.lastText(), "https://pay.example.com")

	proof := newFakeContext(100)
	proof.msg = photoMessage("receipt-1")
	require.NoError(t, app.handlePhoto(proof))

	// Proof goes to the admin by file id, not through the gateway.
	assert.Empty(t, gw.styles)
	require.Len(t, proof.api.sent, 1)
	assert.Equal(t, tele.ChatID(42), proof.api.sent[0].to)
	photo, ok := proof.api.sent[0].what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "receipt-1", photo.FileID)
	assert.Equal(t, "approve_100", photo.Caption)
	assert.Equal(t, msgProofReceived, proof.lastText())

	ref, ok, err := app.store.PendingProof(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "receipt-1", ref)

	// Flag is single-shot: the next photo is a transform request again.
	awaiting, err := app.store.AwaitingProof(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, awaiting)
}

func TestPayFlowOverridesSelectedStyle(t *testing.T) {
	gw := &stubGateway{out: []byte("styled")}
	app := testApp(t, gw)
	require.NoError(t, app.store.SetStyle(context.Background(), 100, "candy"))

	c := newFakeContext(100)
	require.NoError(t, app.handlePay(c))

	proof := newFakeContextWithPhoto(100)
	require.NoError(t, app.handlePhoto(proof))

	assert.Empty(t, gw.styles)

	// The selection survives for after the approval.
	style, ok, err := app.store.Style(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "candy", style)
}
