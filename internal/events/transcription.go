package events

// TranscriptionStarted is emitted when a request is handed to the worker.
type TranscriptionStarted struct {
	BaseEvent
	RequestID string `json:"request_id"`
	Samples   int    `json:"samples"`
}

// TranscriptionProgressed reports a stage update from the worker.
type TranscriptionProgressed struct {
	BaseEvent
	RequestID string  `json:"request_id"`
	Stage     string  `json:"stage"`
	Progress  float64 `json:"progress"`
}

// TranscriptionCompleted is emitted when captions were produced and stored.
type TranscriptionCompleted struct {
	BaseEvent
	RequestID string `json:"request_id"`
	Chunks    int    `json:"chunks"`
}

// TranscriptionFailed is emitted when the worker reports an error.
type TranscriptionFailed struct {
	BaseEvent
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}
