package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/kairos/internal/domain"
	"github.com/iyunix/kairos/internal/middleware"
	"github.com/iyunix/kairos/internal/ratelimit"
	"github.com/iyunix/kairos/internal/repository/conversation"
	"github.com/iyunix/kairos/internal/repository/message"
	"github.com/iyunix/kairos/internal/repository/repotest"
	"github.com/iyunix/kairos/internal/repository/user"
	"github.com/iyunix/kairos/internal/services"
	"github.com/iyunix/kairos/internal/services/ai"
	chatservice "github.com/iyunix/kairos/internal/services/chat"
	"github.com/iyunix/kairos/internal/services/speech"
	"github.com/iyunix/kairos/internal/services/user_services"
)

type fakeTutor struct {
	err error
}

func (f *fakeTutor) GetCompletion(_ context.Context, _ string, transcript []ai.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "¡Hola! ¿Cómo estás hoy?", nil
}

type fakeSpeech struct {
	voice         string
	transcript    string
	transcribeErr error
	gotLocale     string
	gotAudio      string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, language string) ([]byte, error) {
	f.voice = speech.VoiceFor(language)
	return []byte("mp3:" + f.voice), nil
}

func (f *fakeSpeech) Transcribe(_ context.Context, audio io.Reader, _ string, language string) (string, error) {
	b, _ := io.ReadAll(audio)
	f.gotAudio = string(b)
	f.gotLocale = speech.LocaleFor(language)
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return f.transcript, nil
}

type testServer struct {
	handler http.Handler
	db      *gorm.DB
	tutor   *fakeTutor
	speech  *fakeSpeech
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := repotest.NewDB(t)
	logger := &services.NoOpLogger{}

	userRepo := user.NewGormUserRepository(db)
	tutor := &fakeTutor{}
	chatSvc, err := services.NewChatService(
		chatservice.DefaultConfig(),
		userRepo,
		conversation.NewConversationRepository(db),
		message.NewMessageRepository(db),
		tutor,
		logger,
	)
	require.NoError(t, err)

	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.PerMinuteConfig(100))
	t.Cleanup(func() { _ = limiter.Close() })

	fs := &fakeSpeech{transcript: "Hola"}
	h := NewRouter(RouterDeps{
		AuthService:     user_services.NewAuthService(userRepo, logger),
		SettingsService: user_services.NewSettingsService(userRepo, logger),
		ChatService:     chatSvc,
		Speech:          fs,
		AuthLimiter:     limiter,
		AuthLimit:       100,
		AllowedOrigins:  []string{"http://localhost:3000"},
		Logger:          logger,
	})
	return &testServer{handler: h, db: db, tutor: tutor, speech: fs}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestFullScenario(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "x"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	decode(t, rec, &registered)
	assert.NotZero(t, registered.ID)
	assert.Equal(t, "a@b.com", registered.Email)
	assert.Equal(t, "New User", registered.Name)

	rec = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Message string `json:"message"`
		User    struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(t, rec, &login)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, registered.ID, login.User.ID)

	rec = s.do(t, http.MethodPost, "/api/chat/message", map[string]interface{}{"userId": registered.ID, "text": "Hola", "conversationId": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var turn struct {
		ConversationID uint            `json:"conversationId"`
		AIResponse     messageResponse `json:"aiResponse"`
		UserMessage    messageResponse `json:"userMessage"`
	}
	decode(t, rec, &turn)
	assert.NotZero(t, turn.ConversationID)
	assert.Equal(t, "Hola", turn.UserMessage.Text)
	assert.Equal(t, "user", turn.UserMessage.Sender)
	assert.Equal(t, "ai", turn.AIResponse.Sender)
	assert.NotEmpty(t, turn.AIResponse.Text)
	_, err := time.Parse(time.RFC3339Nano, turn.AIResponse.Timestamp)
	assert.NoError(t, err)

	rec = s.do(t, http.MethodGet, "/api/chat/history/"+itoa(turn.ConversationID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []messageResponse
	decode(t, rec, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Sender)
	assert.Equal(t, "ai", history[1].Sender)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "a@b.com", "password": "x"}

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/register", body).Code)

	rec := s.do(t, http.MethodPost, "/api/register", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email already in use"}`, rec.Body.String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "nobody@b.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, rec.Body.String())
}

func TestChatMessageErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/chat/message", map[string]interface{}{"userId": 77, "text": "Hola"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	u := &domain.User{Email: "c@b.com", PasswordHash: "x"}
	require.NoError(t, s.db.Create(u).Error)

	rec = s.do(t, http.MethodPost, "/api/chat/message", map[string]interface{}{"userId": u.ID, "text": "Hola", "conversationId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Conversation not found"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/chat/message", map[string]interface{}{"userId": u.ID, "text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.tutor.err = &ai.AIError{Type: ai.ErrTypeAuth, Operation: "completion", Message: "Access denied"}
	rec = s.do(t, http.MethodPost, "/api/chat/message", map[string]interface{}{"userId": u.ID, "text": "Hola"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")
}

func TestChatMessageZeroConversationIDStartsThread(t *testing.T) {
	s := newTestServer(t)
	u := &domain.User{Email: "z@b.com", PasswordHash: "x"}
	require.NoError(t, s.db.Create(u).Error)

	rec := s.do(t, http.MethodPost, "/api/chat/message", map[string]interface{}{"userId": u.ID, "text": "Hola", "conversationId": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		ConversationID uint `json:"conversationId"`
	}
	decode(t, rec, &out)
	assert.NotZero(t, out.ConversationID)

	var n int64
	require.NoError(t, s.db.Model(&domain.Message{}).Where("conversation_id = ?", out.ConversationID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestHistoryNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, id := range []string{"12345", "4294967296", "99999999999999999999999"} {
		rec := s.do(t, http.MethodGet, "/api/chat/history/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.JSONEq(t, `{"error":"Conversation not found"}`, rec.Body.String(), id)
	}

	rec := s.do(t, http.MethodGet, "/api/user/settings/18446744073709551616", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)
	u := &domain.User{Email: "s@b.com", PasswordHash: "x", TargetLanguage: "Spanish", FluencyLevel: "Beginner"}
	require.NoError(t, s.db.Create(u).Error)

	rec := s.do(t, http.MethodPut, "/api/user/settings", map[string]interface{}{"userId": u.ID, "language": "French", "proficiency": "Advanced"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Settings saved successfully!"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/user/settings/"+itoa(u.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"language":"French","proficiency":"Advanced","topic":""}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/user/settings", map[string]interface{}{"language": "French"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/user/settings", map[string]interface{}{"userId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/user/settings/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTextToSpeech(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/tts", map[string]string{"text": "Hola", "language": "spanish"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "es-ES-ElviraNeural", s.speech.voice)

	rec = s.do(t, http.MethodPost, "/api/tts", map[string]string{"text": "Hello", "language": "dothraki"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, speech.DefaultVoice, s.speech.voice)

	rec = s.do(t, http.MethodPost, "/api/tts", map[string]string{"language": "spanish"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartRequest(t *testing.T, withAudio bool, language string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withAudio {
		part, err := mw.CreateFormFile("audio", "clip.wav")
		require.NoError(t, err)
		_, _ = part.Write([]byte("RIFF"))
	}
	require.NoError(t, mw.WriteField("language", language))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/stt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSpeechToText(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, multipartRequest(t, true, "Spanish"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Hola"}`, rec.Body.String())
	assert.Equal(t, "es-ES", s.speech.gotLocale)
	assert.Equal(t, "RIFF", s.speech.gotAudio)
}

func TestSpeechToTextWithoutAudio(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, multipartRequest(t, false, "Spanish"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No audio file provided"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stt", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No audio file provided"}`, rec.Body.String())
}

func TestSpeechToTextOutcomes(t *testing.T) {
	s := newTestServer(t)

	s.speech.transcribeErr = &speech.ProviderError{Kind: speech.ErrNoMatch, Detail: "NoMatch"}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, multipartRequest(t, true, "Spanish"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.speech.transcribeErr = &speech.ProviderError{Kind: speech.ErrCanceled, StatusCode: 401, Detail: "bad key"}
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, multipartRequest(t, true, "Spanish"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBannerHealthAndCORS(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, banner, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/message", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestAuthRateLimited(t *testing.T) {
	db := repotest.NewDB(t)
	logger := &services.NoOpLogger{}
	userRepo := user.NewGormUserRepository(db)
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.PerMinuteConfig(1))
	t.Cleanup(func() { _ = limiter.Close() })

	h := NewRouter(RouterDeps{
		AuthService: user_services.NewAuthService(userRepo, logger),
		AuthLimiter: limiter,
		AuthLimit:   1,
		Logger:      logger,
	})
	s := &testServer{handler: h}

	body := map[string]string{"email": "x@b.com", "password": "x"}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/login", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/login", body).Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestClientLogSink(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/log", map[string]string{"level": "error", "message": "audio playback failed"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/log", map[string]string{"level": "info"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
