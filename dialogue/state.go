package dialogue

// State is a step of one user's registration dialogue.
type State int

const (
	Idle State = iota
	AwaitingReply
	Validating
	AwaitingConfirmation
	Committed
	Cancelled
	Abandoned
	TimedOut
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	case Validating:
		return "validating"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	case Abandoned:
		return "abandoned"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether the dialogue is over.
func (s State) Terminal() bool {
	return s >= Committed
}

// StartOutcome is the result of a REGISTER press.
type StartOutcome int

const (
	// Started means the greeting was delivered and the dialogue is waiting for a reply.
	Started StartOutcome = iota
	// AlreadySubmitted means the user has a confirmed submission; nothing was sent.
	AlreadySubmitted
	// InProgress means the user already has a running dialogue.
	InProgress
	// DMUnavailable means the private channel could not be opened or written to.
	DMUnavailable
	// ShuttingDown means the manager no longer accepts dialogues.
	ShuttingDown
)

func (o StartOutcome) String() string {
	switch o {
	case Started:
		return "started"
	case AlreadySubmitted:
		return "already_submitted"
	case InProgress:
		return "in_progress"
	case DMUnavailable:
		return "dm_unavailable"
	case ShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// ChoiceOutcome is the result of pressing Confirm or Cancel.
type ChoiceOutcome int

const (
	ChoiceConfirmed ChoiceOutcome = iota
	ChoiceCancelled
	// ChoiceNotOwner means someone other than the requester pressed the button.
	ChoiceNotOwner
	// ChoiceExpired means the dialogue behind the button is gone or not waiting.
	ChoiceExpired
)

func (o ChoiceOutcome) String() string {
	switch o {
	case ChoiceConfirmed:
		return "confirmed"
	case ChoiceCancelled:
		return "cancelled"
	case ChoiceNotOwner:
		return "not_owner"
	case ChoiceExpired:
		return "expired"
	default:
		return "unknown"
	}
}
