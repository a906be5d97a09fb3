// Package mqtt provides MQTT client connectivity for the RoomSense bridge.
//
// This package manages:
//   - Bounded initial connection to the broker (fails fast at startup)
//   - Automatic reconnection with exponential backoff after startup
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//
// # Startup vs runtime
//
// The two connection phases are deliberately asymmetric. At startup the
// broker must be reachable within the bootstrap timeout or Connect
// returns an error and the process exits; a bridge that cannot reach its
// broker records nothing and serves stale data. After the first
// successful connection, lost connections are retried forever with
// backoff, because a running bridge that rides out a broker restart is
// more useful than one that dies.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("+/temperature/status", 1,
//	    func(topic string, payload []byte) error {
//	        return handleReading(topic, payload)
//	    })
package mqtt
