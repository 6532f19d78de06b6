package session

// Level is the severity a notice is shown with
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a one-shot message shown on the next rendered page. Notices
// with an ID are queued at most once; notices without one always queue.
type Notice struct {
	ID      string
	Level   Level
	Message string
}

func Info(message string) Notice {
	return Notice{Level: LevelInfo, Message: message}
}

func Success(message string) Notice {
	return Notice{Level: LevelSuccess, Message: message}
}

func Error(message string) Notice {
	return Notice{Level: LevelError, Message: message}
}

// WithID returns a copy of n that is deduplicated by id
func (n Notice) WithID(id string) Notice {
	n.ID = id
	return n
}
