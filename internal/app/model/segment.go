package model

import "time"

// Segment is one timestamped utterance of a video's transcript.
// Start/End are seconds from the beginning of the video, Start < End.
type Segment struct {
	ID             int64
	VideoID        int64
	Start          float64
	End            float64
	Text           string
	TranslatedText string
	LanguageCode   string
	Embedding      []float32
	CreatedAt      time.Time
}

// SegmentMatch is one ranked retrieval result. Score is the cosine
// similarity in plain mode, or the combined similarity+temporal score
// in hybrid mode.
type SegmentMatch struct {
	SegmentID      int64   `json:"id"`
	Text           string  `json:"text"`
	TranslatedText string  `json:"translated_text,omitempty"`
	Start          float64 `json:"start_time"`
	End            float64 `json:"end_time"`
	Score          float64 `json:"similarity"`
}

// Translation records one subtitle artifact produced for a video.
type Translation struct {
	ID           int64
	VideoID      int64
	LanguageCode string
	VTTPath      string
	CreatedAt    time.Time
}

// ChatHistory is one question/answer exchange about a completed video.
type ChatHistory struct {
	ID        int64     `json:"id"`
	VideoID   int64     `json:"video_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
