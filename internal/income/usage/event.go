package usage

import (
	"encoding/json"

	"inntektlager/pkg/domain"
)

// eventNameUsedIncome is the only event type this consumer processes.
const eventNameUsedIncome = "brukt_inntekt"

// Event is a usage event from the stream: some downstream calculation used a
// cached income record, so retention must keep it.
type Event struct {
	EventName string          `json:"@event_name"`
	ActorID   string          `json:"aktorId"`
	RecordID  string          `json:"inntektsId"`
	Context   json.RawMessage `json:"kontekst"`
}

// parseEvent extracts a usage mark from a raw message. Messages that are not
// well-formed brukt_inntekt events with all required fields are skipped, not
// failed: the stream carries many unrelated event types.
func parseEvent(raw []byte) (domain.RecordID, bool) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return "", false
	}
	if event.EventName != eventNameUsedIncome {
		return "", false
	}
	if event.ActorID == "" || len(event.Context) == 0 {
		return "", false
	}
	recordID, err := domain.ParseRecordID(event.RecordID)
	if err != nil {
		return "", false
	}
	return recordID, true
}
