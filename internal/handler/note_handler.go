package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcoglan/unsafe-sjr/internal/middleware"
	"github.com/jcoglan/unsafe-sjr/internal/model"
	"github.com/jcoglan/unsafe-sjr/internal/negotiate"
)

// maxNoteRequestBytes はメモ作成リクエストのボディ上限。
const maxNoteRequestBytes = 1 << 20

// NoteServiceInterface はメモハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	ListFor(ctx context.Context, userID string) ([]*model.Note, error)
	Create(ctx context.Context, userID, title, body string) (*model.Note, error)
}

// NoteRecorder はメモ操作と表現形式の拒否を記録するインターフェース。
type NoteRecorder interface {
	RecordNoteCreated(representation string)
	RecordRejection(reason string)
}

// NoteHandler はメモ関連のHTTPハンドラー。
type NoteHandler struct {
	service NoteServiceInterface
	metrics NoteRecorder
}

// NewNoteHandler はNoteHandlerを生成する。metricsはnilでもよい。
func NewNoteHandler(service NoteServiceInterface, metrics NoteRecorder) *NoteHandler {
	return &NoteHandler{
		service: service,
		metrics: metrics,
	}
}

type noteResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func toNoteResponse(n *model.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// List は認証ユーザーのメモ一覧を作成順で返す。表現形式は常にData。
// GET /notes, GET /notes.{format}
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.negotiate(w, r, negotiate.OperationRead); !ok {
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
		return
	}

	notes, err := h.service.ListFor(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]noteResponse, len(notes))
	for i, n := range notes {
		results[i] = toNoteResponse(n)
	}
	negotiate.WriteData(w, http.StatusOK, "notes", results)
}

// Create は認証ユーザーのメモを作成する。
// プログラムからのリクエストにはScript、それ以外にはDataで応答する。
// POST /notes, POST /notes.{format}
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.negotiate(w, r, negotiate.OperationMutation)
	if !ok {
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
		return
	}

	req, err := decodeCreateNoteRequest(w, r)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	note, err := h.service.Create(r.Context(), userID, req.Title, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordNoteCreated(rep.String())
	}

	switch rep {
	case negotiate.Script:
		negotiate.WriteScript(w, http.StatusCreated, negotiate.NotesChanged)
	default:
		negotiate.WriteData(w, http.StatusCreated, "note", toNoteResponse(note))
	}
}

// negotiate はリクエストから表現形式を選択する。
// 選択できない場合は406を書き込みfalseを返す。
func (h *NoteHandler) negotiate(w http.ResponseWriter, r *http.Request, op negotiate.Operation) (negotiate.Representation, bool) {
	format := chi.URLParam(r, "format")
	sig := negotiate.SignalsFromRequest(r, format)

	rep, err := negotiate.Select(op, sig)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordRejection(middleware.RejectNotAcceptable)
		}
		slog.Warn("representation not acceptable",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("format", format),
			slog.Bool("requested_with", sig.RequestedWith),
			slog.String("accept", sig.Accept),
		)
		middleware.WriteErrorResponse(w, http.StatusNotAcceptable, model.NewNotAcceptableError(format))
		return negotiate.Data, false
	}

	middleware.SetRepresentation(r.Context(), rep.String())
	return rep, true
}

// decodeCreateNoteRequest はJSONまたはフォーム形式のボディを読み取る。
func decodeCreateNoteRequest(w http.ResponseWriter, r *http.Request) (*createNoteRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req createNoteRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNoteRequestBytes)).Decode(&req); err != nil {
			return nil, errors.New("request body must be a JSON object with title and body")
		}
		return &req, nil
	}

	if r.PostForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxNoteRequestBytes)
	}
	if err := r.ParseForm(); err != nil {
		return nil, errors.New("request body could not be parsed")
	}
	return &createNoteRequest{
		Title: r.PostForm.Get("title"),
		Body:  r.PostForm.Get("body"),
	}, nil
}
