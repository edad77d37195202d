package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/docksched/core/monitoring"
	coremqtt "github.com/kilianp07/docksched/core/mqtt"
	"github.com/kilianp07/docksched/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker           string          `json:"broker"`
	ClientID         string          `json:"client_id"`
	Username         string          `json:"username"`
	Password         string          `json:"password"`
	BoardTopicPrefix string          `json:"board_topic_prefix"`
	ArrivalTopic     string          `json:"arrival_topic"`
	UseTLS           bool            `json:"use_tls"`
	ClientCert       string          `json:"client_cert"`
	ClientKey        string          `json:"client_key"`
	CABundle         string          `json:"ca_bundle"`
	AuthMethod       string          `json:"auth_method"`
	QoS              map[string]byte `json:"qos"`
	LWTTopic         string          `json:"lwt_topic"`
	LWTPayload       string          `json:"lwt_payload"`
	LWTQoS           byte            `json:"lwt_qos"`
	LWTRetain        bool            `json:"lwt_retain"`
	MaxRetries       int             `json:"max_retries"`
	BackoffMS        int             `json:"backoff_ms"`
	TLSConfig        *tls.Config     `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes retained day boards and delivers arrival signals
// received from gate terminals.
type PahoClient struct {
	cli         pahoClient
	boardPrefix string
	arrivals    string
	qos         map[string]byte
	maxRetries  int
	backoff     time.Duration
	log         logger.Logger

	mu        sync.RWMutex
	onArrival coremqtt.ArrivalHandler
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the broker. When an arrival topic is
// configured the client (re)subscribes to it on every connect.
func NewPahoClient(cfg Config, onArrival coremqtt.ArrivalHandler) (*PahoClient, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "docksched-" + uuid.NewString()[:8]
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_board")
	pc := &PahoClient{
		boardPrefix: strings.TrimSuffix(cfg.BoardTopicPrefix, "/"),
		arrivals:    cfg.ArrivalTopic,
		qos:         cfg.QoS,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:         log,
		onArrival:   onArrival,
	}
	if pc.boardPrefix == "" {
		pc.boardPrefix = "docksched/board"
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if pc.arrivals == "" {
			return
		}
		if token := c.Subscribe(pc.arrivals, pc.qosFor("arrival"), pc.handleArrival); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", pc.arrivals, token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s holds no certificate", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 1
}

// BoardTopic returns the retained topic of day.
func (p *PahoClient) BoardTopic(day string) string { return p.boardPrefix + "/" + day }

// PublishBoard sends b as a retained message, retrying with exponential
// backoff.
func (p *PahoClient) PublishBoard(b coremqtt.Board) error {
	if p.cli == nil || !p.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	topic := p.BoardTopic(b.Day)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qosFor("board"), true, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.log.Debugf("published board %s", topic)
			return nil
		}
		p.log.Warnf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "day": b.Day})
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// SetArrivalHandler replaces the arrival callback.
func (p *PahoClient) SetArrivalHandler(h coremqtt.ArrivalHandler) {
	p.mu.Lock()
	p.onArrival = h
	p.mu.Unlock()
}

func (p *PahoClient) handleArrival(_ paho.Client, msg paho.Message) {
	var a coremqtt.Arrival
	if err := json.Unmarshal(msg.Payload(), &a); err != nil {
		p.log.Errorf("failed to decode arrival: %v", err)
		return
	}
	if err := a.Validate(); err != nil {
		p.log.Warnf("ignoring arrival: %v", err)
		return
	}
	if !a.OnSite {
		p.log.Debugf("ignoring arrival %s without on_site", a.ID)
		return
	}
	p.mu.RLock()
	h := p.onArrival
	p.mu.RUnlock()
	if h != nil {
		h(a)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
