package calendar

import "studyplanner/internal/planner"

// Exporter renders sessions into a calendar file.
type Exporter struct {
	Encoder Encoder
}

func NewExporter(enc Encoder) *Exporter {
	return &Exporter{Encoder: enc}
}

// Export either returns the complete payload or an export error.
func (x *Exporter) Export(sessions []planner.SessionWithSubject) ([]byte, error) {
	events, err := BuildEvents(sessions)
	if err != nil {
		return nil, err
	}
	return x.Encoder.Encode(events)
}
