package lavalink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	sharedConfig "rubybot/internal/shared/config"
	"rubybot/internal/shared/goroutine"
	"rubybot/internal/shared/logger"
)

const (
	nodeReconnectBaseDelay = 1 * time.Second
	nodeReconnectMaxDelay  = 30 * time.Second
)

// Track end reasons the node reports.
const (
	TrackEndReasonFinished = "finished"
	TrackEndReasonStopped  = "stopped"
	TrackEndReasonReplaced = "replaced"
)

// EventListener receives player events from the node socket.
type EventListener interface {
	OnTrackEnd(guildID, reason string)
	OnTrackException(guildID, message string)
}

type nodeMessage struct {
	Op        string `json:"op"`
	SessionID string `json:"sessionId,omitempty"`
	Type      string `json:"type,omitempty"`
	GuildID   string `json:"guildId,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Exception *struct {
		Message string `json:"message"`
	} `json:"exception,omitempty"`
}

// Node maintains the websocket session with the Lavalink node. The session ID
// it receives on ready scopes all REST player operations.
type Node struct {
	cfg      sharedConfig.LavalinkConfig
	botID    string
	listener EventListener
	logger   logger.Interface

	sessionID string
	sessionMu sync.RWMutex

	stopChan   chan struct{}
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	isRunning  bool
	runningMu  sync.Mutex
}

// NewNode creates a node client. botID is the bot's Discord user ID, sent as
// the User-Id header on connect.
func NewNode(cfg sharedConfig.LavalinkConfig, botID string, listener EventListener, log logger.Interface) *Node {
	return &Node{
		cfg:      cfg,
		botID:    botID,
		listener: listener,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// SessionID returns the current node session ID, or "" before ready.
func (n *Node) SessionID() string {
	n.sessionMu.RLock()
	defer n.sessionMu.RUnlock()
	return n.sessionID
}

// Start connects to the node and keeps the session alive until Stop.
func (n *Node) Start(ctx context.Context) error {
	n.runningMu.Lock()
	if n.isRunning {
		n.runningMu.Unlock()
		return nil
	}
	n.isRunning = true
	n.stopChan = make(chan struct{})
	runCtx, cancel := context.WithCancel(ctx)
	n.cancelFunc = cancel
	n.runningMu.Unlock()

	n.logger.Infow("starting lavalink node client", "addr", n.cfg.GetAddr())

	n.wg.Add(1)
	goroutine.SafeGo(n.logger, "lavalink-connect-loop", func() {
		n.connectLoop(runCtx)
	})

	return nil
}

// Stop closes the node connection.
func (n *Node) Stop() {
	n.runningMu.Lock()
	if !n.isRunning {
		n.runningMu.Unlock()
		return
	}
	n.isRunning = false
	if n.cancelFunc != nil {
		n.cancelFunc()
	}
	n.runningMu.Unlock()

	close(n.stopChan)
	n.wg.Wait()
	n.logger.Infow("lavalink node client stopped")
}

func (n *Node) connectLoop(ctx context.Context) {
	defer n.wg.Done()

	delay := nodeReconnectBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.stopChan:
			return
		default:
		}

		err := n.runConnection(ctx)
		if ctx.Err() != nil {
			return
		}
		n.logger.Errorw("lavalink connection ended, reconnecting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			return
		case <-n.stopChan:
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > nodeReconnectMaxDelay {
			delay = nodeReconnectMaxDelay
		}
	}
}

func (n *Node) runConnection(ctx context.Context) error {
	scheme := "ws"
	if n.cfg.Secure {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/v4/websocket", scheme, n.cfg.GetAddr())

	header := http.Header{}
	header.Set("Authorization", n.cfg.Password)
	header.Set("User-Id", n.botID)
	header.Set("Client-Name", "rubybot/1.0")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("failed to dial lavalink node: %w", err)
	}
	defer conn.Close()

	closeDone := make(chan struct{})
	defer close(closeDone)
	goroutine.SafeGo(n.logger, "lavalink-close-watch", func() {
		select {
		case <-ctx.Done():
		case <-n.stopChan:
		case <-closeDone:
			return
		}
		_ = conn.Close()
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read node message: %w", err)
		}

		var msg nodeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			n.logger.Warnw("failed to decode node message", "error", err)
			continue
		}

		switch msg.Op {
		case "ready":
			n.sessionMu.Lock()
			n.sessionID = msg.SessionID
			n.sessionMu.Unlock()
			n.logger.Infow("lavalink node ready", "session_id", msg.SessionID)
		case "event":
			n.handleEvent(&msg)
		case "playerUpdate", "stats":
			// Not consumed.
		}
	}
}

func (n *Node) handleEvent(msg *nodeMessage) {
	switch msg.Type {
	case "TrackEndEvent":
		n.listener.OnTrackEnd(msg.GuildID, msg.Reason)
	case "TrackExceptionEvent":
		message := "unknown error"
		if msg.Exception != nil {
			message = msg.Exception.Message
		}
		n.listener.OnTrackException(msg.GuildID, message)
	case "TrackStuckEvent":
		n.listener.OnTrackException(msg.GuildID, "track stuck")
	}
}
