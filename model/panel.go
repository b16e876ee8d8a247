package model

import "time"

// PanelState records where the REGISTER panel was posted.
type PanelState struct {
	ChannelID string    `json:"channel_id"`
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}
