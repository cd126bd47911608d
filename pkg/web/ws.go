// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/outrigdev/iniedit/pkg/utilfn"
)

const wsReadWaitTimeout = 15 * time.Second
const wsWriteWaitTimeout = 10 * time.Second
const wsPingPeriodTickTime = 10 * time.Second
const wsInitialPingTime = 1 * time.Second
const wsSearchTimeout = 20 * time.Second

const (
	WsMsgSearch          = "search"
	WsMsgSearchResult    = "searchresult"
	WsMsgHighlightResult = "highlightresult"
	WsMsgError           = "error"
	WsMsgPing            = "ping"
	WsMsgPong            = "pong"
)

// SearchRequest searches the file list, or one open document when DocId is set
type SearchRequest struct {
	Type   string `json:"type"`
	ReqId  string `json:"reqid"`
	Query  string `json:"q"`
	Syntax string `json:"syntax,omitempty"`
	DocId  string `json:"docid,omitempty"`
}

var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:   4 * 1024,
	WriteBufferSize:  32 * 1024,
	HandshakeTimeout: 1 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

func (s *Server) HandleWs(w http.ResponseWriter, r *http.Request) {
	err := s.HandleWsInternal(w, r)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
	}
}

func getMessageType(jmsg map[string]any) string {
	if str, ok := jmsg["type"].(string); ok {
		return str
	}
	return ""
}

func makeErrorMessage(reqId string, err error) map[string]any {
	return map[string]any{"type": WsMsgError, "reqid": reqId, "error": err.Error()}
}

// sendMessage gives up once the connection is gone
func sendMessage(ctx context.Context, outputCh chan any, msg any) {
	select {
	case outputCh <- msg:
	case <-ctx.Done():
	}
}

func (s *Server) processMessage(ctx context.Context, jmsg map[string]any, outputCh chan any) {
	msgType := getMessageType(jmsg)
	if msgType != WsMsgSearch {
		if msgType != "" {
			log.WithField("type", msgType).Debug("ignoring websocket message")
		}
		return
	}
	var req SearchRequest
	if err := utilfn.ReUnmarshal(&req, jmsg); err != nil {
		sendMessage(ctx, outputCh, makeErrorMessage("", fmt.Errorf("bad search message: %w", err)))
		return
	}
	syntax, err := s.querySyntax(req.Syntax)
	if err != nil {
		sendMessage(ctx, outputCh, makeErrorMessage(req.ReqId, err))
		return
	}
	if req.DocId != "" {
		sess, err := s.ws.Get(req.DocId)
		if err != nil {
			sendMessage(ctx, outputCh, makeErrorMessage(req.ReqId, fmt.Errorf("%w: %s", err, req.DocId)))
			return
		}
		sendMessage(ctx, outputCh, map[string]any{
			"type":     WsMsgHighlightResult,
			"reqid":    req.ReqId,
			"docid":    req.DocId,
			"matchset": sess.Highlight(req.Query, syntax),
		})
		return
	}
	ctx, cancel := context.WithTimeout(ctx, wsSearchTimeout)
	defer cancel()
	files, err := s.ws.Filter(ctx, req.Query, syntax)
	if err != nil {
		sendMessage(ctx, outputCh, makeErrorMessage(req.ReqId, err))
		return
	}
	sendMessage(ctx, outputCh, map[string]any{
		"type":  WsMsgSearchResult,
		"reqid": req.ReqId,
		"files": files,
	})
}

func (s *Server) ReadLoop(ctx context.Context, conn *websocket.Conn, outputCh chan any, closeCh chan any, connId string) {
	readWait := wsReadWaitTimeout
	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(readWait))
	defer close(closeCh)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.WithField("connid", connId).WithError(err).Debug("websocket read loop done")
			break
		}
		jmsg := map[string]any{}
		err = json.Unmarshal(message, &jmsg)
		if err != nil {
			log.WithField("connid", connId).WithError(err).Warn("error unmarshalling websocket json")
			break
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		msgType := getMessageType(jmsg)
		if msgType == WsMsgPong {
			// nothing
			continue
		}
		if msgType == WsMsgPing {
			now := time.Now()
			pongMessage := map[string]interface{}{"type": WsMsgPong, "stime": now.UnixMilli()}
			outputCh <- pongMessage
			continue
		}
		go s.processMessage(ctx, jmsg, outputCh)
	}
}

func WritePing(conn *websocket.Conn) error {
	now := time.Now()
	pingMessage := map[string]interface{}{"type": WsMsgPing, "stime": now.UnixMilli()}
	jsonVal, _ := json.Marshal(pingMessage)
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout)) // no error
	return conn.WriteMessage(websocket.TextMessage, jsonVal)
}

func WriteLoop(conn *websocket.Conn, outputCh chan any, closeCh chan any, connId string) {
	ticker := time.NewTicker(wsInitialPingTime)
	defer ticker.Stop()
	initialPing := true
	for {
		select {
		case msg := <-outputCh:
			barr, err := json.Marshal(msg)
			if err != nil {
				log.WithField("connid", connId).WithError(err).Warn("cannot marshal websocket message")
				break
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout))
			err = conn.WriteMessage(websocket.TextMessage, barr)
			if err != nil {
				conn.Close()
				log.WithField("connid", connId).WithError(err).Debug("websocket write loop done")
				return
			}

		case <-ticker.C:
			err := WritePing(conn)
			if err != nil {
				log.WithField("connid", connId).WithError(err).Debug("websocket ping failed")
				return
			}
			if initialPing {
				initialPing = false
				ticker.Reset(wsPingPeriodTickTime)
			}

		case <-closeCh:
			return
		}
	}
}

func (s *Server) registerConn(connId string, conn *websocket.Conn) {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	s.conns[connId] = conn
}

func (s *Server) unregisterConn(connId string) {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	delete(s.conns, connId)
}

// NumConns returns the number of live websocket connections
func (s *Server) NumConns() int {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	return len(s.conns)
}

func (s *Server) closeAllConns() {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) HandleWsInternal(w http.ResponseWriter, r *http.Request) error {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("WebSocket Upgrade Failed: %v", err)
	}
	defer conn.Close()

	connId := uuid.New().String()
	outputCh := make(chan any, 100)
	closeCh := make(chan any)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.WithField("connid", connId).Info("new websocket connection")

	s.registerConn(connId, conn)
	defer s.unregisterConn(connId)

	wg := &sync.WaitGroup{}
	wg.Add(2)

	go func() {
		// read loop
		defer wg.Done()
		s.ReadLoop(ctx, conn, outputCh, closeCh, connId)
	}()

	go func() {
		// write loop
		defer wg.Done()
		WriteLoop(conn, outputCh, closeCh, connId)
	}()

	wg.Wait()
	return nil
}
