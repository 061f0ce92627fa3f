package mqtt

import "fmt"

// Topic prefixes for http2sql messages.
//
// Events use the flat scheme: http2sql/events/{kind}
const (
	// TopicPrefixEvents is the base for schema and data change events.
	TopicPrefixEvents = "http2sql/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "http2sql/system"
)

// Topics provides builders for http2sql MQTT topics.
//
//	topic := mqtt.Topics{}.Event("table_created")
//	// Returns: "http2sql/events/table_created"
type Topics struct{}

// Event returns the topic an event of the given kind is published on.
func (Topics) Event(kind string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, kind)
}

// AllEvents returns a wildcard topic matching every event kind.
func (Topics) AllEvents() string {
	return TopicPrefixEvents + "/+"
}

// SystemStatus returns the retained online/offline status topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
