package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	corechat "github.com/jinford/mail-rag/internal/core/chat"
	coreingestion "github.com/jinford/mail-rag/internal/core/ingestion"
	"github.com/jinford/mail-rag/internal/core/mail"
	coreretrieval "github.com/jinford/mail-rag/internal/core/retrieval"
	corereply "github.com/jinford/mail-rag/internal/core/reply"
)

// Server はメールアシスタントのHTTP APIを提供する
type Server struct {
	ingest   *coreingestion.IngestService
	retrieve *coreretrieval.RetrieveService
	chat     *corechat.ChatService
	reply    *corereply.ReplyService
	emails   mail.EmailRepository
	prompts  mail.PromptRepository
	logger   *slog.Logger
}

type ServerOption func(*Server)

// WithServerLogger は Server にロガーを設定する
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer は新しい Server を作成する
func NewServer(
	ingest *coreingestion.IngestService,
	retrieve *coreretrieval.RetrieveService,
	chat *corechat.ChatService,
	reply *corereply.ReplyService,
	emails mail.EmailRepository,
	prompts mail.PromptRepository,
	opts ...ServerOption,
) *Server {
	srv := &Server{
		ingest:   ingest,
		retrieve: retrieve,
		chat:     chat,
		reply:    reply,
		emails:   emails,
		prompts:  prompts,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	return srv
}

// Handler は全ルートを登録したハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/general-chat", s.handleGeneralChat)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)

	mux.HandleFunc("GET /api/emails", s.handleListEmails)
	mux.HandleFunc("GET /api/emails/{id}", s.handleGetEmail)
	mux.HandleFunc("PATCH /api/emails/{id}", s.handleUpdateEmail)
	mux.HandleFunc("POST /api/emails/receive", s.handleReceiveEmail)
	mux.HandleFunc("POST /api/emails/generate-replies", s.handleGenerateReplies)
	mux.HandleFunc("POST /api/emails/send", s.handleSendEmail)

	mux.HandleFunc("GET /api/prompts", s.handleListPrompts)
	mux.HandleFunc("PUT /api/prompts/{id}", s.handleUpdatePrompt)

	return mux
}

// writeJSON は成功レスポンスをJSONで書き出す
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError はエラーレスポンスを {"error": ...} の形で書き出す
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON はリクエストボディをデコードする
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
