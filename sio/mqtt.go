/* Copyright 2026 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sio

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTCouplings is a Couplings for an MQTT client.
//
// Messages published to the subscription topics become Performer
// input, and each Output is published to OutTopic.
type MQTTCouplings struct {
	Client      mqtt.Client
	Quiesce     uint
	SubTopics   string
	InjectTopic bool
	OutTopic    string
	Verbose     bool

	InTimeout time.Duration

	incoming chan interface{}
	outbound chan *Output
	done     chan bool
}

// NewMQTTCouplings parses the given args with a FlagSet and makes an
// MQTT client (not yet connected).  Given nil args, it just returns
// the FlagSet.
func NewMQTTCouplings(args []string) (*MQTTCouplings, *flag.FlagSet) {
	var (
		// Follow mosquitto_sub command line args.

		fs = flag.NewFlagSet("mq", flag.ExitOnError)

		broker      = fs.String("h", "tcp://localhost", "Broker hostname")
		clientId    = fs.String("i", "", "Client id")
		port        = fs.Int("p", 1883, "Broker port")
		keepAlive   = fs.Int("k", 10, "Keep-alive in seconds")
		userName    = fs.String("u", "", "Username")
		password    = fs.String("P", "", "Password")
		willTopic   = fs.String("will-topic", "", "Optional will topic")
		willPayload = fs.String("will-payload", "", "Optional will message")
		willQoS     = fs.Int("will-qos", 0, "Optional will QoS")
		willRetain  = fs.Bool("will-retain", false, "Optional will retention")
		reconnect   = fs.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean       = fs.Bool("c", true, "Clean session")
		quiesce     = fs.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")

		certFilename = fs.String("cert", "", "Optional cert filename")
		keyFilename  = fs.String("key", "", "Optional key filename")
		insecure     = fs.Bool("insecure", false, "Skip broker cert checking")
		caFilename   = fs.String("cafile", "", "Optional CA cert filename")

		subTopics   = fs.String("t", "riffs/gesture/#", "subscription topic(s), comma-separated, each TOPIC[:QOS]")
		injectTopic = fs.Bool("inject-topic", true, "put topic in map of incoming messages")
		outTopic    = fs.String("out-topic", "riffs/out", "Topic for published outputs (TOPIC[:QOS])")
		inTimeout   = fs.Duration("in-timeout", time.Second, "timeout for in-bound queuing")
		verbose     = fs.Bool("v", false, "Verbose logging")
	)

	if args == nil {
		return nil, fs
	}

	fs.Parse(args)

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	opts := mqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))

	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	if *willTopic != "" {
		if *willPayload == "" {
			log.Fatal("will topic without payload")
		}
		opts.WillEnabled = true
		opts.WillTopic = *willTopic
		opts.WillPayload = []byte(*willPayload)
		opts.WillRetained = *willRetain
		opts.WillQos = byte(*willQoS)
	}

	tlsConf := &tls.Config{
		InsecureSkipVerify: *insecure,
	}

	if *caFilename != "" {
		rootCAs, _ := x509.SystemCertPool()
		if rootCAs == nil {
			rootCAs = x509.NewCertPool()
		}
		certs, err := ioutil.ReadFile(filepath.Clean(*caFilename))
		if err != nil {
			log.Fatalf("couldn't read '%s': %s", *caFilename, err)
		}
		if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
			log.Println("No certs appended, using system certs only")
		}
		tlsConf.RootCAs = rootCAs
	}

	if *keyFilename != "" {
		cert, err := tls.LoadX509KeyPair(*certFilename, *keyFilename)
		if err != nil {
			log.Fatal(err)
		}
		tlsConf.Certificates = []tls.Certificate{cert}
	}

	opts.SetTLSConfig(tlsConf)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	c := &MQTTCouplings{
		Quiesce:     uint(*quiesce),
		SubTopics:   *subTopics,
		InjectTopic: *injectTopic,
		OutTopic:    *outTopic,
		InTimeout:   *inTimeout,
		Verbose:     *verbose,

		incoming: make(chan interface{}),
		outbound: make(chan *Output),
		done:     make(chan bool),
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		c.inHandler(context.Background(), msg.Topic(), msg.Payload())
	}

	c.Client = mqtt.NewClient(opts)

	return c, fs
}

func (c *MQTTCouplings) logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf(format, args...)
	}
}

// Inbound turns a published payload into a Performer message.
//
// A JSON map gets a "topic" property when InjectTopic is set.  Any
// other JSON value is used as is, and a payload that isn't JSON is
// used as a string (an event name).
func (c *MQTTCouplings) Inbound(topic string, payload []byte) interface{} {
	var x interface{}
	if err := json.Unmarshal(payload, &x); err != nil {
		return strings.TrimSpace(string(payload))
	}
	if m, is := x.(map[string]interface{}); is && c.InjectTopic {
		if _, have := m["topic"]; !have {
			m["topic"] = topic
		}
	}
	return x
}

// inHandler is a Paho publish handler, which is used to handle
// messages sent to us from the MQTT broker due to our subscriptions.
func (c *MQTTCouplings) inHandler(ctx context.Context, topic string, payload []byte) {
	c.logf("incoming: %s %s", topic, payload)

	x := c.Inbound(topic, payload)

	to := time.NewTimer(c.InTimeout)
	defer to.Stop()

	select {
	case <-ctx.Done():
	case c.incoming <- x:
	case <-to.C:
		log.Printf("warning: dropped %s message due to stall", topic)
	}
}

// Start creates the MQTT session.
func (c *MQTTCouplings) Start(ctx context.Context) error {
	c.logf("Attempting to connect to broker")
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	for _, topic := range strings.Split(c.SubTopics, ",") {
		topic, qos := parseTopic(topic)
		if topic == "" {
			continue
		}
		c.logf("Subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
	}

	go func() {
		if err := c.outLoop(ctx); err != nil {
			log.Printf("MQTT outLoop error %v", err)
		}
	}()

	return nil
}

// IO returns the channels for incoming messages and outbound Outputs.
func (c *MQTTCouplings) IO(ctx context.Context) (chan interface{}, chan *Output, chan bool, error) {
	return c.incoming, c.outbound, c.done, nil
}

// outLoop publishes Outputs to the broker.
func (c *MQTTCouplings) outLoop(ctx context.Context) error {
	topic, qos := parseTopic(c.OutTopic)
LOOP:
	for {
		select {
		case <-ctx.Done():
			break LOOP
		case o := <-c.outbound:
			if o == nil {
				break LOOP
			}
			js, err := json.Marshal(o)
			if err != nil {
				log.Printf("Failed to marshal %#v", o)
				continue
			}
			token := c.Client.Publish(topic, qos, false, js)
			token.Wait()
			if err := token.Error(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stop terminates the MQTT session.
func (c *MQTTCouplings) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Quiesce)
	close(c.done)
	return nil
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 || 2 < n {
		return s, 0
	}
	return s[:i], byte(n)
}
