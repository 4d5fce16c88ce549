package app

const (
	MsgMenu = "Press:\n" +
		"s            : to save image\n" +
		"r, g, b, or k: to show colors\n" +
		"q or ESC     : to quit"

	MsgServeMenu = "Open http://%s in a browser. The same keys work in the page."

	MsgSaved = "Saved %s"
)
