package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves the prefix empty.
const DefaultTopicPrefix = "tartan"

// Topic kinds under a house.
const (
	KindUpdate = "update"
	KindState  = "state"
)

// Topics builds topic names under a prefix.
//
//	topics := mqtt.Topics{Prefix: "tartan"}
//	topics.HouseState("alpha") // "tartan/houses/alpha/state"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return strings.TrimSuffix(t.Prefix, "/")
}

// HouseUpdate returns the inbound update topic for a house.
func (t Topics) HouseUpdate(house string) string {
	return fmt.Sprintf("%s/houses/%s/%s", t.prefix(), house, KindUpdate)
}

// HouseState returns the retained state topic for a house.
func (t Topics) HouseState(house string) string {
	return fmt.Sprintf("%s/houses/%s/%s", t.prefix(), house, KindState)
}

// AllHouseUpdates returns a pattern matching every house's update topic.
func (t Topics) AllHouseUpdates() string {
	return fmt.Sprintf("%s/houses/+/%s", t.prefix(), KindUpdate)
}

// SystemStatus returns the online/offline status topic.
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// ParseHouseTopic splits a house topic into its house name and kind.
// It reports false for topics outside {prefix}/houses/{house}/{kind}.
func (t Topics) ParseHouseTopic(topic string) (house, kind string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.prefix()+"/houses/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
