package register

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"regbot/dialogue"
)

func TestStartReply(t *testing.T) {
	assert.Equal(t, dialogue.MsgDMSent, StartReply(dialogue.Started))
	assert.Equal(t, dialogue.MsgAlreadySubmitted, StartReply(dialogue.AlreadySubmitted))
	assert.Equal(t, dialogue.MsgInProgress, StartReply(dialogue.InProgress))
	assert.Equal(t, dialogue.MsgDMUnavailable, StartReply(dialogue.DMUnavailable))
	assert.Equal(t, dialogue.MsgShuttingDown, StartReply(dialogue.ShuttingDown))
}

func TestChoiceReply(t *testing.T) {
	assert.Equal(t, dialogue.MsgSaved, ChoiceReply(dialogue.ChoiceConfirmed))
	assert.Equal(t, dialogue.MsgCancelled, ChoiceReply(dialogue.ChoiceCancelled))
	assert.Equal(t, dialogue.MsgNotOwner, ChoiceReply(dialogue.ChoiceNotOwner))
	assert.Equal(t, dialogue.MsgExpired, ChoiceReply(dialogue.ChoiceExpired))
}
