package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Session is one live page bound to one WebSocket connection.
type Session struct {
	id       string
	page     string
	conn     *websocket.Conn
	config   SessionConfig
	engine   todoui.Config
	logger   *zap.Logger
	observer SessionObserver

	doc      *dom.Document
	loop     *sched.Loop
	confirms *remoteConfirmer

	// Owned by the loop goroutine.
	live     *todoui.Page
	lastHTML string

	send      chan ServerMessage
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Session)
	wg        sync.WaitGroup
}

func newSession(id, page, markup, location string, conn *websocket.Conn, cfg Config) (*Session, error) {
	logger := cfg.Logger.Named("session").With(zap.String("session", id), zap.String("page", page))
	s := &Session{
		id:       id,
		page:     page,
		conn:     conn,
		config:   cfg.Session,
		engine:   cfg.Engine,
		logger:   logger,
		observer: cfg.Sessions,
		loop:     sched.New(sched.WithLogger(logger)),
		send:     make(chan ServerMessage, cfg.Session.SendQueue),
		done:     make(chan struct{}),
	}
	s.confirms = newRemoteConfirmer(s.enqueue)

	doc, err := dom.ParseString(markup, location,
		dom.WithNavigator(dom.NavigatorFunc(s.navigate)),
		dom.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("server: parse page %s: %w", page, err)
	}
	s.doc = doc
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Page returns the name of the page fixture the session runs.
func (s *Session) Page() string { return s.page }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start loads the engine and starts the session goroutines. They stop when
// ctx is done, the client goes away, or the page navigates.
func (s *Session) Start(ctx context.Context) {
	s.observer.SessionOpened()
	s.logger.Info("session started")

	_ = s.loop.Post(s.load)

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, sched.ErrStopped) {
			s.logger.Debug("loop ended", zap.Error(err))
		}
		s.Close()
	}()
	go s.readLoop()
	go s.writeLoop()
}

// Wait blocks until every session goroutine has returned.
func (s *Session) Wait() { s.wg.Wait() }

// Close ends the session. It is safe to call more than once and from any
// goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.loop.Stop()
		s.conn.Close()
		s.observer.SessionClosed()
		s.logger.Info("session closed")
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// load runs on the loop.
func (s *Session) load() {
	cfg := s.engine
	cfg.Confirmer = s.confirms
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	s.live = todoui.Load(s.doc, s.loop, cfg)
	s.enqueue(ServerMessage{Type: MsgHello, Session: s.id})
	s.flush()
	s.scheduleFlush()
}

func (s *Session) scheduleFlush() {
	s.loop.After(s.config.FlushInterval, func() {
		s.flush()
		s.scheduleFlush()
	}, sched.Named("server.flush"))
}

// flush pushes the page HTML if it changed since the last push.
func (s *Session) flush() {
	if s.doc.Unloaded() {
		return
	}
	markup, err := s.doc.HTML()
	if err != nil {
		s.logger.Warn("render page", zap.Error(err))
		return
	}
	if markup == s.lastHTML {
		return
	}
	s.lastHTML = markup
	s.enqueue(ServerMessage{Type: MsgHTML, HTML: markup})
}

// navigate is the document navigator: the submission is handed to the
// client, which performs the real request.
func (s *Session) navigate(sub dom.Submission) error {
	s.logger.Info("native submission",
		zap.String("method", sub.Method),
		zap.String("action", sub.Action),
	)
	s.enqueue(ServerMessage{
		Type:   MsgNavigate,
		Method: sub.Method,
		Action: sub.Action,
		Values: sub.Values,
		final:  true,
	})
	return nil
}

// enqueue queues m for the write loop. A full queue closes the session.
func (s *Session) enqueue(m ServerMessage) {
	select {
	case s.send <- m:
	case <-s.done:
	default:
		s.logger.Warn("send queue full, closing session", zap.String("type", m.Type))
		s.observer.WebSocketError(ErrKindOverflow)
		s.Close()
	}
}

// handle applies a client message. It runs on the loop.
func (s *Session) handle(m ClientMessage) {
	if s.doc.Unloaded() || s.live == nil {
		return
	}
	if err := s.apply(m); err != nil {
		s.logger.Debug("message rejected", zap.String("type", m.Type), zap.Error(err))
		s.observer.WebSocketError(ErrKindTarget)
		s.enqueue(ServerMessage{Type: MsgError, Error: err.Error()})
	}
	s.flush()
}

func (s *Session) apply(m ClientMessage) error {
	if m.Type == MsgConfirm {
		return s.confirms.answer(m.ID, m.Accepted)
	}
	n, err := s.target(m.Target)
	if err != nil {
		return err
	}
	switch m.Type {
	case MsgClick:
		return s.doc.Click(n)
	case MsgInput:
		s.doc.Input(n, m.Value)
	case MsgSubmit:
		_, err = s.doc.RequestSubmit(n)
		return err
	case MsgHover:
		s.doc.Hover(n, m.Enter)
	case MsgSettle:
		s.live.Settle(n)
	}
	return nil
}

func (s *Session) target(expr string) (*html.Node, error) {
	n, err := dom.Query(s.doc.Root(), expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: no element matches %s", ErrBadMessage, expr)
	}
	return n, nil
}

func (s *Session) readLoop() {
	defer s.wg.Done()
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warn("read error", zap.Error(err))
					s.observer.WebSocketError(ErrKindRead)
				}
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		m, err := DecodeClientMessage(data)
		if err != nil {
			s.observer.WebSocketError(ErrKindDecode)
			s.enqueue(ServerMessage{Type: MsgError, Error: err.Error()})
			continue
		}
		if err := s.loop.Post(func() { s.handle(m) }); err != nil {
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case m := <-s.send:
			if err := s.write(m); err != nil {
				s.logger.Warn("write error", zap.Error(err))
				s.observer.WebSocketError(ErrKindWrite)
				s.Close()
				return
			}
			if m.final {
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "navigated"),
					time.Now().Add(s.config.WriteTimeout))
				s.Close()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

func (s *Session) write(m ServerMessage) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(m)
}
