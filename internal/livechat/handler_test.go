package livechat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/domain"
	"github.com/neo-mofox/webui/internal/livechat"
	"github.com/neo-mofox/webui/internal/pubsub"
	"github.com/neo-mofox/webui/internal/ws"
)

type stubStreams struct {
	streams []domain.ChatStream
}

func (s *stubStreams) List(ctx context.Context, limit int) ([]domain.ChatStream, error) {
	if limit < len(s.streams) {
		return s.streams[:limit], nil
	}
	return s.streams, nil
}

func (s *stubStreams) Get(ctx context.Context, streamID string) (*domain.ChatStream, error) {
	for _, st := range s.streams {
		if st.StreamID == streamID {
			return &st, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStreams) ListByUser(ctx context.Context, platform, userID string) ([]domain.ChatStream, error) {
	return nil, nil
}
func (s *stubStreams) Delete(ctx context.Context, streamID string) error { return nil }
func (s *stubStreams) Count(ctx context.Context) (int, error)            { return len(s.streams), nil }

type stubMessages struct {
	messages []domain.ChatMessage
}

func (s *stubMessages) Recent(ctx context.Context, streamID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range s.messages {
		if m.StreamID == streamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMessages) Before(ctx context.Context, streamID string, before float64, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range s.messages {
		if m.StreamID == streamID && m.Time < before {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMessages) ByPlatform(ctx context.Context, platform, senderID string, limit int) ([]domain.ChatMessage, error) {
	return nil, nil
}
func (s *stubMessages) GetByMessageID(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	return nil, domain.ErrNotFound
}
func (s *stubMessages) Create(ctx context.Context, msg *domain.ChatMessage) error     { return nil }
func (s *stubMessages) DeleteByStream(ctx context.Context, streamID string) error     { return nil }
func (s *stubMessages) Since(ctx context.Context, since float64) ([]domain.ChatMessage, error) {
	return nil, nil
}
func (s *stubMessages) Count(ctx context.Context) (int, error) { return len(s.messages), nil }

type capturingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *capturingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

type echoValidator struct{ v *validator.Validate }

func (ev *echoValidator) Validate(i interface{}) error { return ev.v.Struct(i) }

func newTestContext(t *testing.T, method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &echoValidator{v: validator.New()}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStreamsGetFiltersExcludedPlatform(t *testing.T) {
	streams := &stubStreams{streams: []domain.ChatStream{
		{StreamID: "a", Platform: "qq", LastMessageTime: 200},
		{StreamID: "b", Platform: "astrbot", LastMessageTime: 150},
		{StreamID: "c", Platform: "telegram", LastMessageTime: 100},
	}}
	h := livechat.NewHandler(ws.NewRegistry(), streams, &stubMessages{}, &capturingPublisher{})

	c, rec := newTestContext(t, http.MethodGet, "/api/live_chat/streams", "")
	require.NoError(t, h.StreamsGet(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var result []livechat.StreamInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "a", result[0].StreamID)
	assert.Equal(t, "c", result[1].StreamID)
}

func TestMessagesGetReturnsHistory(t *testing.T) {
	msgs := &stubMessages{messages: []domain.ChatMessage{
		{MessageID: "m1", StreamID: "room1", Content: "hello", Time: 1},
		{MessageID: "m2", StreamID: "room1", Content: "world", Time: 2},
		{MessageID: "m3", StreamID: "room2", Content: "other", Time: 3},
	}}
	h := livechat.NewHandler(ws.NewRegistry(), &stubStreams{}, msgs, &capturingPublisher{})

	c, rec := newTestContext(t, http.MethodGet, "/api/live_chat/messages/room1", "")
	c.SetParamNames("stream_id")
	c.SetParamValues("room1")

	require.NoError(t, h.MessagesGet(c))

	var result []livechat.MessageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "hello", result[0].Content)
}

func TestSendPostPublishesWithResolvedPlatform(t *testing.T) {
	streams := &stubStreams{streams: []domain.ChatStream{
		{StreamID: "room1", Platform: "qq"},
	}}
	pub := &capturingPublisher{}
	h := livechat.NewHandler(ws.NewRegistry(), streams, &stubMessages{}, pub)

	c, rec := newTestContext(t, http.MethodPost, "/api/live_chat/send",
		`{"stream_id":"room1","content":"hi there"}`)
	require.NoError(t, h.SendPost(c))

	var resp livechat.SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, pubsub.TopicChatSend, pub.messages[0].Topic)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0].Payload, &payload))
	assert.Equal(t, "qq", payload["platform"])
	assert.Equal(t, "text", payload["message_type"], "message_type defaults to text")
}

func TestSendPostUnknownStream(t *testing.T) {
	pub := &capturingPublisher{}
	h := livechat.NewHandler(ws.NewRegistry(), &stubStreams{}, &stubMessages{}, pub)

	c, rec := newTestContext(t, http.MethodPost, "/api/live_chat/send",
		`{"stream_id":"ghost","content":"hi"}`)
	require.NoError(t, h.SendPost(c))

	var resp livechat.SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, pub.messages)
}

func TestSendPostValidation(t *testing.T) {
	h := livechat.NewHandler(ws.NewRegistry(), &stubStreams{}, &stubMessages{}, &capturingPublisher{})

	c, _ := newTestContext(t, http.MethodPost, "/api/live_chat/send", `{"content":"no stream"}`)
	err := h.SendPost(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
