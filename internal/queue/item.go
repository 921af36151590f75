package queue

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// MsgRestarted is the error recorded for items whose file was lost with the process.
const MsgRestarted = "the service restarted before this file was processed; add it again"

// Item is a persisted queue entry. The file itself only lives in memory.
type Item struct {
	ID          string `msgpack:"id" json:"id"`
	FileName    string `msgpack:"fileName" json:"fileName"`
	Status      Status `msgpack:"status" json:"status"`
	Error       string `msgpack:"error,omitempty" json:"error,omitempty"`
	CandidateID *int64 `msgpack:"candidateId,omitempty" json:"candidateId,omitempty"`
}

// Active reports whether the item still waits for or is going through processing.
func (i Item) Active() bool {
	return i.Status == StatusPending || i.Status == StatusProcessing
}

// File is a selected upload.
type File struct {
	Name string
	Data []byte
}

// Report summarizes a Process run.
type Report struct {
	Processed  int     `json:"processed"`
	Succeeded  int     `json:"succeeded"`
	Failed     int     `json:"failed"`
	Candidates []int64 `json:"candidates"`
}
