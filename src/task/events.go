package task

import "time"

type TaskEvent struct {
	JobID     string
	Type      TaskEventType
	Timestamp time.Time
}

type TaskEventType string

const (
	Started    TaskEventType = "started"
	Downloaded TaskEventType = "downloaded"
	Loaded     TaskEventType = "loaded"
	Composed   TaskEventType = "composed"
	Exported   TaskEventType = "exported"
	Failed     TaskEventType = "failed"
	Completed  TaskEventType = "completed"
	Stopped    TaskEventType = "stopped"
	Cleaned    TaskEventType = "cleaned"
)
