package model

// FFProbeStream is one stream entry from `ffprobe -print_format json`.
type FFProbeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate int    `json:"sample_rate,string"`
}

// FFProbeFormat is the container-level block of the probe output.
type FFProbeFormat struct {
	Duration string `json:"duration"`
}

// FFProbeOutput is the subset of the probe output we read.
type FFProbeOutput struct {
	Streams []FFProbeStream `json:"streams"`
	Format  FFProbeFormat   `json:"format"`
}

// HasVideoStream reports whether any stream carries video.
func (o *FFProbeOutput) HasVideoStream() bool {
	for _, s := range o.Streams {
		if s.CodecType == "video" {
			return true
		}
	}
	return false
}
