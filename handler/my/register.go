package my

import (
	"regbot/dialogue"
	"regbot/handler"
	"regbot/store"
)

var records store.Store

// RegisterHandlers registers the handlers for the "My registration" button.
func RegisterHandlers(st store.Store) {
	records = st
	handler.AddComponentHandler(dialogue.MyRegistrationButtonID, MyRegistrationButtonHandler)
}
