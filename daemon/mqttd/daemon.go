/*
Package mqttd classifies live IMU streams received over MQTT.

Each device publishes one JSON sample per message to <prefix>/<device>/imu
and receives replies on <prefix>/<device>/activity, in the same shapes the
websocket endpoint uses. A device's session ends after it has been idle
for the configured duration, or when the daemon stops.
*/
package mqttd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catdb/cache"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	topicIMU      = "imu"
	topicActivity = "activity"
)

var errBadTopic = errors.New("unexpected topic")

type reply struct {
	Activity string `json:"activity,omitempty"`
	Error    string `json:"error,omitempty"`
}

type deviceSession struct {
	*pipeline.Session
	lastSeen time.Time
}

type MQTTDaemon struct {
	Config    *params.MQTTDaemonConfig
	logger    *slog.Logger
	artifacts pipeline.ArtifactSource

	// publish sends a reply. It is the MQTT client's publish once running.
	publish func(topic string, payload []byte)
	dedupe  func(cache.Delivery) bool
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*deviceSession
}

// NewMQTTDaemon creates a daemon classifying with artifacts from src.
// A nil src loads the configured model lazily.
func NewMQTTDaemon(config *params.MQTTDaemonConfig, src pipeline.ArtifactSource) (*MQTTDaemon, error) {
	if config == nil {
		config = params.DefaultMQTTDaemonConfig()
	}
	if config.Pipeline == nil {
		config.Pipeline = params.DefaultPipelineConfig()
	}
	if err := config.Pipeline.Validate(); err != nil {
		return nil, err
	}
	if config.TopicPrefix == "" {
		return nil, fmt.Errorf("%w: empty topic prefix", params.ErrInvalidConfig)
	}
	if src == nil {
		src = pipeline.NewLazyArtifacts(config.Model)
	}
	d := &MQTTDaemon{
		Config:    config,
		logger:    slog.With("d", "mqtt"),
		artifacts: src,
		dedupe:    cache.NewDedupePassLRUFunc(params.CacheRedeliverySize),
		now:       time.Now,
		sessions:  make(map[string]*deviceSession),
	}
	d.publish = func(topic string, payload []byte) {
		d.logger.Debug("No client, dropping reply", "topic", topic)
	}
	return d, nil
}

// SubscribeTopic is the wildcard topic all devices publish samples to.
func (d *MQTTDaemon) SubscribeTopic() string {
	return d.Config.TopicPrefix + "/+/" + topicIMU
}

// ReplyTopic is where a device's replies are published.
func (d *MQTTDaemon) ReplyTopic(device string) string {
	return d.Config.TopicPrefix + "/" + device + "/" + topicActivity
}

// deviceFromTopic returns the device of a <prefix>/<device>/imu topic.
func (d *MQTTDaemon) deviceFromTopic(topic string) (string, error) {
	rest, ok := strings.CutPrefix(topic, d.Config.TopicPrefix+"/")
	if !ok {
		return "", fmt.Errorf("%w: %s", errBadTopic, topic)
	}
	device, kind, ok := strings.Cut(rest, "/")
	if !ok || kind != topicIMU || device == "" {
		return "", fmt.Errorf("%w: %s", errBadTopic, topic)
	}
	return device, nil
}

// Run connects to the broker and serves until ctx is canceled.
func (d *MQTTDaemon) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(d.Config.Broker).
		SetClientID(d.Config.ClientID).
		SetUsername(d.Config.Username).
		SetPassword(d.Config.Password).
		SetAutoReconnect(true).
		SetOrderMatters(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		// Subscriptions do not survive a clean reconnect.
		t := c.Subscribe(d.SubscribeTopic(), d.Config.QoS, d.onMessage)
		go func() {
			if t.Wait() && t.Error() != nil {
				d.logger.Error("Subscribe failed", "topic", d.SubscribeTopic(), "error", t.Error())
				return
			}
			d.logger.Info("Subscribed", "topic", d.SubscribeTopic())
		}()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		d.logger.Warn("Connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	d.logger.Info("Connected to MQTT broker", "broker", d.Config.Broker)

	d.mu.Lock()
	d.publish = func(topic string, payload []byte) {
		t := client.Publish(topic, d.Config.QoS, false, payload)
		// Waiting inside a message handler can deadlock an ordered client.
		go func() {
			if t.WaitTimeout(10*time.Second) && t.Error() != nil {
				d.logger.Warn("Publish failed", "topic", topic, "error", t.Error())
			}
		}()
	}
	d.mu.Unlock()

	ticker := time.NewTicker(d.expiryInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.closeAll()
			client.Disconnect(250)
			d.logger.Info("MQTT daemon stopped")
			return nil
		case <-ticker.C:
			if n := d.expireIdle(); n > 0 {
				d.logger.Info("Expired idle sessions", "count", n)
			}
		}
	}
}

func (d *MQTTDaemon) expiryInterval() time.Duration {
	iv := d.Config.SessionIdle / 4
	if iv < time.Second {
		iv = time.Second
	}
	return iv
}

func (d *MQTTDaemon) onMessage(_ mqtt.Client, msg mqtt.Message) {
	d.handle(msg.Topic(), msg.MessageID(), msg.Duplicate(), msg.Payload())
}

// handle pushes one delivered sample and publishes a reply when a window completes.
// Redeliveries of a message already handled are dropped.
func (d *MQTTDaemon) handle(topic string, id uint16, duplicate bool, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Recovered MQTT handler", "panic", r, "topic", topic)
		}
	}()
	device, err := d.deviceFromTopic(topic)
	if err != nil {
		d.logger.Warn("Dropping message", "error", err)
		return
	}
	fresh := d.dedupe(cache.Delivery{Topic: topic, MessageID: id, Payload: payload})
	if duplicate && !fresh {
		d.logger.Debug("Dropping redelivery", "topic", topic, "id", id)
		return
	}

	sess, err := d.session(device)
	if err != nil {
		d.reply(device, reply{Error: err.Error()})
		return
	}
	res, err := sess.PushJSON(context.Background(), payload)
	switch {
	case errors.Is(err, pipeline.ErrMalformedInput):
		d.reply(device, reply{Error: "Invalid JSON"})
	case err != nil:
		d.logger.Warn("Live window failed", "device", device, "error", err)
		d.reply(device, reply{Error: err.Error()})
	case res != nil:
		d.reply(device, reply{Activity: res.Label.String()})
	}
}

func (d *MQTTDaemon) reply(device string, r reply) {
	b, err := json.Marshal(r)
	if err != nil {
		d.logger.Error("Failed to marshal reply", "error", err)
		return
	}
	d.mu.Lock()
	publish := d.publish
	d.mu.Unlock()
	publish(d.ReplyTopic(device), b)
}

// session returns the device's session, starting one if needed.
func (d *MQTTDaemon) session(device string) (*pipeline.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, ok := d.sessions[device]
	if !ok {
		s, err := pipeline.NewSession(d.Config.Pipeline, d.artifacts, events.SourceMQTT, device)
		if err != nil {
			return nil, err
		}
		ds = &deviceSession{Session: s}
		d.sessions[device] = ds
		d.logger.Info("Session started", "device", device, "session", s.ID)
	}
	ds.lastSeen = d.now()
	return ds.Session, nil
}

// expireIdle closes sessions idle for longer than the configured duration.
func (d *MQTTDaemon) expireIdle() int {
	d.mu.Lock()
	var idle []*deviceSession
	now := d.now()
	for device, ds := range d.sessions {
		if now.Sub(ds.lastSeen) > d.Config.SessionIdle {
			idle = append(idle, ds)
			delete(d.sessions, device)
		}
	}
	d.mu.Unlock()
	for _, ds := range idle {
		totals := ds.Close()
		d.logger.Info("Session ended", "device", ds.Device, "session", ds.ID,
			"activity", totals.Label, "steps", totals.Steps)
	}
	return len(idle)
}

func (d *MQTTDaemon) closeAll() {
	d.mu.Lock()
	all := d.sessions
	d.sessions = make(map[string]*deviceSession)
	d.mu.Unlock()
	for _, ds := range all {
		ds.Close()
	}
}

// Sessions returns the number of open device sessions.
func (d *MQTTDaemon) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
