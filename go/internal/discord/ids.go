package discord

import "strings"

// Component custom ids.
const (
	ButtonJoin             = "join_souldraw"
	ButtonViewParticipants = "view_participants"
	ButtonConfirm          = "confirm_souldraw"
	ButtonCancel           = "cancel_souldraw"
	ButtonToggleMode       = "toggle_draw_mode"

	removeMenuPrefix = "remove_participant:"
)

// RemoveMenuID encodes the drawing a removal menu belongs to. The menu lives
// on a private reply, so it cannot be resolved through the announcement index.
func RemoveMenuID(drawingID string) string {
	return removeMenuPrefix + drawingID
}

// ParseRemoveMenuID extracts the drawing id from a removal menu custom id.
func ParseRemoveMenuID(customID string) (string, bool) {
	id, ok := strings.CutPrefix(customID, removeMenuPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
