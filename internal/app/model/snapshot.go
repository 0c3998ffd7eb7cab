package model

// StatusSnapshot is one point-in-time view of a running job, as read
// by the status observer and streamed to watchers.
type StatusSnapshot struct {
	VideoID  int64       `json:"video_id"`
	Status   VideoStatus `json:"status,omitempty"`
	Step     string      `json:"step,omitempty"`
	Progress int         `json:"progress"`
	Error    string      `json:"error,omitempty"`
}

// Equal compares the fields a watcher cares about. Two consecutive
// identical snapshots must never both be emitted.
func (s StatusSnapshot) Equal(o StatusSnapshot) bool {
	return s.VideoID == o.VideoID && s.Status == o.Status &&
		s.Step == o.Step && s.Progress == o.Progress && s.Error == o.Error
}
