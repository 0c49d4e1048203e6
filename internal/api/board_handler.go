package api

import (
	"log/slog"
	"net/http"

	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/service"
)

// BoardHandler handles board-related HTTP requests
type BoardHandler struct {
	boardService service.BoardService
	logger       *slog.Logger
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boardService service.BoardService, logger *slog.Logger) *BoardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BoardHandler")
	}

	return &BoardHandler{
		boardService: boardService,
		logger:       logger.With(slog.String("component", "board_handler")),
	}
}

// CreateBoard handles POST /boards requests
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Identity not found in request context")
		return
	}

	var req CreateBoardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	board, err := h.boardService.CreateBoard(r.Context(), identity, req.Title)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("board created",
		slog.String("board_id", board.ID.String()),
		slog.String("identity_id", identity.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, boardToResponse(board))
}

// GetBoard handles GET /boards/{id} requests
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	identity, boardID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(r.Context(), identity, boardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boardToResponse(board))
}

// ListBoards handles GET /boards requests
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Identity not found in request context")
		return
	}

	boards, err := h.boardService.ListBoards(r.Context(), identity)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := make([]BoardResponse, 0, len(boards))
	for _, board := range boards {
		resp = append(resp, boardToResponse(board))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// UpdateBoard handles PATCH /boards/{id} requests
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, boardID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	board, err := h.boardService.RenameBoard(r.Context(), identity, boardID, req.Title)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("board renamed",
		slog.String("board_id", board.ID.String()),
		slog.String("identity_id", identity.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, boardToResponse(board))
}

// DeleteBoard handles DELETE /boards/{id} requests
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, boardID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(r.Context(), identity, boardID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("board deleted",
		slog.String("board_id", boardID.String()),
		slog.String("identity_id", identity.ID.String()))
	w.WriteHeader(http.StatusNoContent)
}
