package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/espresso/internal/presence"
	"github.com/nfrund/espresso/internal/rendering"
	"github.com/nfrund/espresso/internal/view"
)

// Handler serves the read-only HTTP views of live rooms.
type Handler struct {
	engine   *Engine
	renderer rendering.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(engine *Engine, renderer rendering.Renderer) *Handler {
	return &Handler{engine: engine, renderer: renderer}
}

// roomsResponse is the body of GET /api/rooms.
type roomsResponse struct {
	Rooms []presence.RoomSummary `json:"rooms"`
	Count int                    `json:"count"`
}

// ListRooms returns the active rooms as JSON.
func (h *Handler) ListRooms(c echo.Context) error {
	rooms := h.engine.Rooms()
	if rooms == nil {
		rooms = []presence.RoomSummary{}
	}
	return c.JSON(http.StatusOK, roomsResponse{Rooms: rooms, Count: len(rooms)})
}

// RoomsPage renders the full rooms overview page.
func (h *Handler) RoomsPage(c echo.Context) error {
	content := view.AdaptGomponentToTempl(view.RoomsPage(h.engine.Rooms()))
	return h.renderer.RenderPage(c, http.StatusOK, view.Layout("Espresso Chat rooms", content))
}

// RoomsFragment renders only the rooms table for htmx polling.
func (h *Handler) RoomsFragment(c echo.Context) error {
	return h.renderer.RenderPage(c, http.StatusOK, view.RoomsTable(h.engine.Rooms()))
}
