package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/nergy-se/heatprice/pkg/state"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Client publishes snapshots to a remote broker.
type Client struct {
	client paho.Client
	topic  string
}

func Connect(broker, clientID, base string) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logrus.Warnf("mqtt: connection to %s lost: %s", broker, err)
	}

	c := paho.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(publishTimeout) {
		logrus.Warnf("mqtt: %s not reachable yet, retrying in background", broker)
	} else if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &Client{
		client: c,
		topic:  StateTopic(base),
	}, nil
}

func (c *Client) PublishState(s state.Snapshot) error {
	payload, err := FormatPayload(s)
	if err != nil {
		return err
	}
	tok := c.client.Publish(c.topic, 1, true, payload)
	if !tok.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish %s: timeout", c.topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", c.topic, err)
	}
	return nil
}

func (c *Client) Close() error {
	c.client.Disconnect(250)
	return nil
}
