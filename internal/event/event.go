package event

// Direction says which side of a conversation sent a message.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// DirectionFromMe maps the store's is_from_me flag to a Direction.
func DirectionFromMe(isFromMe bool) Direction {
	if isFromMe {
		return Outgoing
	}
	return Incoming
}

// MessageEvent is a single message as seen from one counterpart handle.
//
// Date is the store's native timestamp (see timeline.FromApple); it is
// converted to calendar time during resolution, never by the extractor.
type MessageEvent struct {
	Identifier     string
	Direction      Direction
	Date           int64
	ConversationID int64
	// Participants is the number of other handles in the conversation.
	Participants int
}

// IsDirect reports whether the event belongs to a one-on-one conversation.
func (e MessageEvent) IsDirect() bool {
	return e.Participants == 1
}
