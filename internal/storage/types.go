package storage

import "time"

// Kind classifies a file by how the pipeline can grow or split it.
type Kind string

const (
	KindText   Kind = "text"
	KindAudio  Kind = "audio"
	KindVideo  Kind = "video"
	KindImage  Kind = "image"
	KindPDF    Kind = "pdf"
	KindDoc    Kind = "doc"
	KindBinary Kind = "binary"
)

type UploadInfo struct {
	Name    string    `json:"name"`
	Bytes   int64     `json:"bytes"`
	SizeMB  float64   `json:"size_mb"`
	Kind    Kind      `json:"kind"`
	ModTime time.Time `json:"mod_time"`
}

type OutputInfo struct {
	Path    string    `json:"path"`
	Bytes   int64     `json:"bytes"`
	SizeMB  float64   `json:"size_mb"`
	Kind    Kind      `json:"kind"`
	ModTime time.Time `json:"mod_time"`
}

// SplitDir is a freshly created per-job directory under the output root.
type SplitDir struct {
	Abs string
	Rel string
}
