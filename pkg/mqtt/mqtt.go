package mqtt

import (
	"fmt"

	mqttv2 "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/nergy-se/heatprice/pkg/state"
	"github.com/sirupsen/logrus"
)

// Broker is an embedded MQTT broker. Snapshots are published through its
// inline client so local subscribers need no other infrastructure.
type Broker struct {
	server *mqttv2.Server
	topic  string
}

func StartBroker(address, base string) (*Broker, error) {
	server := mqttv2.New(&mqttv2.Options{
		InlineClient: true,
	})

	// Allow all connections.
	_ = server.AddHook(new(auth.AllowHook), nil)

	tcp := listeners.NewTCP(listeners.Config{ID: "t1", Address: address})
	err := server.AddListener(tcp)
	if err != nil {
		return nil, fmt.Errorf("mqtt: listen %s: %w", address, err)
	}

	err = server.Serve()
	if err != nil {
		return nil, fmt.Errorf("mqtt: serve: %w", err)
	}

	logrus.Infof("mqtt: broker listening on %s", address)
	return &Broker{
		server: server,
		topic:  StateTopic(base),
	}, nil
}

func (b *Broker) PublishState(s state.Snapshot) error {
	payload, err := FormatPayload(s)
	if err != nil {
		return err
	}
	err = b.server.Publish(b.topic, payload, true, 0)
	if err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", b.topic, err)
	}
	return nil
}

func (b *Broker) Close() error {
	return b.server.Close()
}
