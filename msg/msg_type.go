package msg

// MessageType is written at the head of every frame, before the message body.
type MessageType uint32

const (
	UndefinedMsg            MessageType = 0
	RegisterWorkerResultMsg MessageType = 1
	AssignmentMsg           MessageType = 2
	TerminateMsg            MessageType = 3
	ChunkResultMsg          MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case RegisterWorkerResultMsg:
		return "RegisterWorkerResult"
	case AssignmentMsg:
		return "Assignment"
	case TerminateMsg:
		return "Terminate"
	case ChunkResultMsg:
		return "ChunkResult"
	default:
		return "Undefined"
	}
}
