// Package mqtt provides MQTT client connectivity for the house controller.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retained state
//   - Subscriptions that survive reconnects
//   - Last Will and Testament for offline detection
//
// # Topics
//
// All topics live under a configurable prefix (default "tartan"):
//
//	tartan/houses/{house}/update   inbound field updates (JSON object)
//	tartan/houses/{house}/state    retained house view, published per commit
//	tartan/system/status           online/offline status (retained, LWT)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.AllHouseUpdates(), 1,
//	    func(topic string, payload []byte) error {
//	        name, kind, ok := topics.ParseHouseTopic(topic)
//	        ...
//	    })
package mqtt
