package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the farm message bus.
const (
	TopicPrefix       = "agrosirius"
	TopicPrefixSowing = TopicPrefix + "/sowing"
	TopicPrefixCore   = TopicPrefix + "/core"
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for the farm's MQTT topics.
//
//	mqtt.Topics{}.SowingReport("tablet-07") // agrosirius/sowing/tablet-07
type Topics struct{}

// SowingReport is where a field node publishes its sowing reports.
func (Topics) SowingReport(node string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixSowing, node)
}

// AllSowingReports matches every node's report topic.
func (Topics) AllSowingReports() string {
	return TopicPrefixSowing + "/+"
}

// CoreSummary carries the retained farm summary (counts and totals).
func (Topics) CoreSummary() string {
	return TopicPrefixCore + "/summary"
}

// CorePlots carries the retained list of painted plots.
func (Topics) CorePlots() string {
	return TopicPrefixCore + "/plots"
}

// SystemStatus carries the core's retained online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// NodeFromSowingTopic returns the node segment of a sowing report topic,
// or "" if topic is not one.
func NodeFromSowingTopic(topic string) string {
	node, ok := strings.CutPrefix(topic, TopicPrefixSowing+"/")
	if !ok || node == "" || strings.Contains(node, "/") {
		return ""
	}
	return node
}
