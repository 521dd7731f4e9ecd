package view

import (
	"strings"

	"github.com/nfrund/espresso/internal/presence"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// RoomsFragmentPath is polled by the rooms page to refresh its table.
const RoomsFragmentPath = "/rooms/fragment"

// RoomsPage renders the rooms overview. The table reloads itself every five
// seconds through htmx.
func RoomsPage(rooms []presence.RoomSummary) gomponents.Node {
	return Main(
		Class("container mx-auto p-4"),
		H1(Class("text-2xl font-bold mb-4"), gomponents.Text("Active rooms")),
		Div(
			ID("rooms"),
			hx.Get(RoomsFragmentPath),
			hx.Trigger("every 5s"),
			hx.Swap("innerHTML"),
			RoomsTable(rooms),
		),
	)
}

// RoomsTable renders the room list fragment.
func RoomsTable(rooms []presence.RoomSummary) gomponents.Node {
	if len(rooms) == 0 {
		return P(Class("text-gray-500"), gomponents.Text("No active rooms."))
	}

	return Table(
		Class("min-w-full"),
		THead(Tr(
			Th(gomponents.Text("Room")),
			Th(gomponents.Text("Members")),
			Th(gomponents.Text("Users")),
		)),
		TBody(gomponents.Map(rooms, roomRow)),
	)
}

func roomRow(r presence.RoomSummary) gomponents.Node {
	return Tr(
		Td(gomponents.Text(r.Room)),
		Td(gomponents.Textf("%d", r.Members)),
		Td(gomponents.Text(strings.Join(r.Users, ", "))),
	)
}
