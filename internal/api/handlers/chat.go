package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"floe/internal/core"
	"floe/internal/types"
	"floe/internal/weather"
)

// ChatHandler answers free-text weather questions. It reuses the weather
// composer in penguin mode; the reply is the narrative text.
type ChatHandler struct {
	composer WeatherComposer
	logger   *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(composer WeatherComposer, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		composer: composer,
		logger:   logger,
	}
}

// RegisterRoutes mounts the chat endpoint onto the mux.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
}

// chatRequest is the request payload for POST /v1/chat. City is the preferred
// structured field; when absent, a gazetteer keyword scan of the message is
// attempted as a convenience.
type chatRequest struct {
	Message string `json:"message"`
	City    string `json:"city,omitempty"`
}

// chatResponse is the response payload for POST /v1/chat.
type chatResponse struct {
	Reply string `json:"reply"`
	City  string `json:"city"`
	Model string `json:"model,omitempty"`
}

// HandleChat handles POST /v1/chat.
//
// Narrative failures degrade inside the composer, so an LLM outage still
// produces a 200 with fallback text. Only an unknown or undeterminable city,
// or a weather provider outage, fails the request.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"message is required",
			nil,
		))
		return
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		city = extractCity(req.Message)
	}
	if city == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"could not determine a city from the message; include the city field",
			nil,
		))
		return
	}

	view, err := h.composer.Compose(r.Context(), city, req.Message, weather.ModePenguin)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: chatResponse{
		Reply: view.Narrative,
		City:  view.Reading.City,
		Model: view.Model,
	}})
}
