package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rubybot/internal/shared/goroutine"
	"rubybot/internal/shared/logger"
)

const gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway opcodes.
const (
	opDispatch         = 0
	opHeartbeat        = 1
	opIdentify         = 2
	opPresenceUpdate   = 3
	opVoiceStateUpdate = 4
	opReconnect        = 7
	opInvalidSession   = 9
	opHello            = 10
	opHeartbeatACK     = 11
)

// Gateway intents the bot subscribes to.
const (
	IntentGuilds        = 1 << 0
	IntentGuildMembers  = 1 << 1
	IntentVoiceStates   = 1 << 7
	IntentGuildMessages = 1 << 9
)

const (
	// defaultEventWorkers is the number of concurrent dispatch workers.
	// Events are routed to workers by guild affinity so per-guild ordering
	// holds while guilds are processed concurrently.
	defaultEventWorkers = 4

	eventQueueSize     = 64
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 60 * time.Second
)

// Event is a gateway dispatch delivered to the handler.
type Event struct {
	Type    string
	GuildID string
	Data    json.RawMessage
}

// EventHandler routes gateway dispatch events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// Gateway maintains the websocket connection to Discord: identify, heartbeat,
// sequence tracking, reconnect with backoff, and dispatch to worker buckets.
type Gateway struct {
	token   string
	intents int
	handler EventHandler
	logger  logger.Interface

	conn    *websocket.Conn
	writeMu sync.Mutex

	sequence   int64
	sequenceMu sync.Mutex

	workerCount int
	workers     []chan *Event

	stopChan   chan struct{}
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	isRunning  bool
	runningMu  sync.Mutex
}

// NewGateway creates a gateway client. The handler receives every dispatch
// event.
func NewGateway(token string, intents int, handler EventHandler, log logger.Interface) *Gateway {
	return &Gateway{
		token:       token,
		intents:     intents,
		handler:     handler,
		logger:      log,
		workerCount: defaultEventWorkers,
		stopChan:    make(chan struct{}),
	}
}

// Start connects and begins consuming events. It returns immediately; the
// connection loop runs until Stop.
func (g *Gateway) Start(ctx context.Context) error {
	g.runningMu.Lock()
	if g.isRunning {
		g.runningMu.Unlock()
		return nil
	}
	g.isRunning = true
	g.stopChan = make(chan struct{})
	runCtx, cancel := context.WithCancel(ctx)
	g.cancelFunc = cancel
	g.runningMu.Unlock()

	g.workers = make([]chan *Event, g.workerCount)
	for i := range g.workers {
		g.workers[i] = make(chan *Event, eventQueueSize)
		workerIdx := i
		g.wg.Add(1)
		goroutine.SafeGo(g.logger, "gateway-event-worker", func() {
			g.eventWorker(runCtx, workerIdx)
		})
	}

	g.logger.Infow("starting discord gateway", "workers", g.workerCount)

	g.wg.Add(1)
	goroutine.SafeGo(g.logger, "gateway-connect-loop", func() {
		g.connectLoop(runCtx)
	})

	return nil
}

// Stop closes the connection and waits for in-flight events to drain.
func (g *Gateway) Stop() {
	g.runningMu.Lock()
	if !g.isRunning {
		g.runningMu.Unlock()
		return
	}
	g.isRunning = false
	if g.cancelFunc != nil {
		g.cancelFunc()
	}
	g.runningMu.Unlock()

	close(g.stopChan)
	g.writeMu.Lock()
	if g.conn != nil {
		_ = g.conn.Close()
	}
	g.writeMu.Unlock()
	g.wg.Wait()
	g.logger.Infow("discord gateway stopped")
}

// UpdatePresence sets the bot's activity line.
func (g *Gateway) UpdatePresence(activity string) error {
	return g.send(gatewayPayload{
		Op: opPresenceUpdate,
		D: mustMarshal(map[string]any{
			"since":      nil,
			"activities": []map[string]any{{"name": activity, "type": 0}},
			"status":     "online",
			"afk":        false,
		}),
	})
}

// UpdateVoiceState joins or leaves a voice channel. Pass channelID "" to
// disconnect.
func (g *Gateway) UpdateVoiceState(guildID, channelID string) error {
	var channel any
	if channelID != "" {
		channel = channelID
	}
	return g.send(gatewayPayload{
		Op: opVoiceStateUpdate,
		D: mustMarshal(map[string]any{
			"guild_id":   guildID,
			"channel_id": channel,
			"self_mute":  false,
			"self_deaf":  true,
		}),
	})
}

func (g *Gateway) connectLoop(ctx context.Context) {
	defer g.wg.Done()

	delay := reconnectBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.stopChan:
			return
		default:
		}

		err := g.runConnection(ctx)
		if ctx.Err() != nil {
			return
		}
		g.logger.Errorw("gateway connection ended, reconnecting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			return
		case <-g.stopChan:
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// runConnection performs one full session: dial, hello, identify, then read
// until the connection drops.
func (g *Gateway) runConnection(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, gatewayURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial gateway: %w", err)
	}
	g.writeMu.Lock()
	g.conn = conn
	g.writeMu.Unlock()
	defer conn.Close()

	var hello gatewayPayload
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("failed to read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello opcode, got %d", hello.Op)
	}
	var helloD helloData
	if err := json.Unmarshal(hello.D, &helloD); err != nil {
		return fmt.Errorf("failed to decode hello: %w", err)
	}

	if err := g.identify(); err != nil {
		return fmt.Errorf("failed to identify: %w", err)
	}

	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	goroutine.SafeGo(g.logger, "gateway-heartbeat", func() {
		g.heartbeatLoop(ctx, time.Duration(helloD.HeartbeatInterval)*time.Millisecond, heartbeatDone)
	})

	for {
		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		switch payload.Op {
		case opDispatch:
			if payload.S != nil {
				g.setSequence(*payload.S)
			}
			g.dispatch(ctx, &payload)
		case opHeartbeat:
			if err := g.sendHeartbeat(); err != nil {
				return fmt.Errorf("failed to answer heartbeat request: %w", err)
			}
		case opReconnect:
			return fmt.Errorf("gateway requested reconnect")
		case opInvalidSession:
			return fmt.Errorf("gateway invalidated session")
		case opHeartbeatACK:
			// Nothing to do.
		}
	}
}

func (g *Gateway) identify() error {
	return g.send(gatewayPayload{
		Op: opIdentify,
		D: mustMarshal(map[string]any{
			"token":   g.token,
			"intents": g.intents,
			"properties": map[string]string{
				"os":      "linux",
				"browser": "rubybot",
				"device":  "rubybot",
			},
		}),
	})
}

func (g *Gateway) heartbeatLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := g.sendHeartbeat(); err != nil {
				g.logger.Warnw("failed to send heartbeat", "error", err)
				return
			}
		}
	}
}

func (g *Gateway) sendHeartbeat() error {
	seq := g.getSequence()
	var d json.RawMessage
	if seq > 0 {
		d = mustMarshal(seq)
	} else {
		d = json.RawMessage("null")
	}
	return g.send(gatewayPayload{Op: opHeartbeat, D: d})
}

// dispatch routes an event to a worker bucket by guild affinity. Events for
// the same guild always land on the same worker, preserving per-guild order.
func (g *Gateway) dispatch(ctx context.Context, payload *gatewayPayload) {
	event := &Event{
		Type:    payload.T,
		GuildID: extractGuildID(payload.D),
		Data:    payload.D,
	}

	idx := g.guildAffinity(event.GuildID)
	select {
	case g.workers[idx] <- event:
	case <-ctx.Done():
	case <-g.stopChan:
	default:
		g.logger.Warnw("event worker queue full, dropping event",
			"worker", idx,
			"type", event.Type,
			"guild_id", event.GuildID,
		)
	}
}

func (g *Gateway) eventWorker(ctx context.Context, workerIdx int) {
	defer g.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-g.stopChan:
			return
		case event := <-g.workers[workerIdx]:
			if err := g.handler.HandleEvent(ctx, event); err != nil {
				g.logger.Errorw("failed to handle gateway event",
					"worker", workerIdx,
					"type", event.Type,
					"guild_id", event.GuildID,
					"error", err,
				)
			}
		}
	}
}

func (g *Gateway) guildAffinity(guildID string) int {
	if guildID == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(guildID))
	return int(h.Sum32() % uint32(g.workerCount))
}

func (g *Gateway) send(payload gatewayPayload) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if g.conn == nil {
		return fmt.Errorf("gateway not connected")
	}
	return g.conn.WriteJSON(payload)
}

func (g *Gateway) setSequence(s int64) {
	g.sequenceMu.Lock()
	g.sequence = s
	g.sequenceMu.Unlock()
}

func (g *Gateway) getSequence() int64 {
	g.sequenceMu.Lock()
	defer g.sequenceMu.Unlock()
	return g.sequence
}

func extractGuildID(data json.RawMessage) string {
	var probe struct {
		GuildID string `json:"guild_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	if probe.GuildID != "" {
		return probe.GuildID
	}
	return probe.ID
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
