package conversation

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ExchangeMessage is the wire payload published for every exchange so the
// consumer can embed and persist it without touching the session state.
type ExchangeMessage struct {
	UserID      string `json:"user_id"`
	Query       string `json:"query"`
	Response    string `json:"response"`
	Timestamp   int64  `json:"timestamp"`
	SourceCount int    `json:"source_count"`
}

type watermillMirror struct {
	publisher message.Publisher
	topicName string
}

// NewWatermillMirror publishes exchanges to topicName on the given pub/sub.
func NewWatermillMirror(publisher message.Publisher, topicName string) Mirror {
	return &watermillMirror{
		publisher: publisher,
		topicName: topicName,
	}
}

func (m *watermillMirror) PublishExchange(userID string, ex Exchange) error {
	payload := ExchangeMessage{
		UserID:      userID,
		Query:       ex.Query,
		Response:    ex.Response,
		Timestamp:   ex.Timestamp.Unix(),
		SourceCount: len(ex.Sources),
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadJson)
	return m.publisher.Publish(m.topicName, msg)
}
