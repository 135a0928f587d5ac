package models

import "encoding/json"

// StreamRecord is one line of a summary stream. Exactly one of SummaryChunk
// and Error is set; an error record is always the last one.
type StreamRecord struct {
	SummaryChunk string
	Error        string
}

func ChunkRecord(chunk string) StreamRecord {
	return StreamRecord{SummaryChunk: chunk}
}

func ErrorRecord(err error) StreamRecord {
	msg := "summary generation failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return StreamRecord{Error: msg}
}

func (r StreamRecord) IsError() bool {
	return r.Error != ""
}

func (r StreamRecord) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		SummaryChunk string `json:"summary_chunk"`
	}{r.SummaryChunk})
}

func (r *StreamRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		SummaryChunk string `json:"summary_chunk"`
		Error        string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.SummaryChunk = raw.SummaryChunk
	r.Error = raw.Error
	return nil
}
