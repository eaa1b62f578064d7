// Package server implements the framed TCP protocol: a listener accepting
// connections, one session per connection, and the command router feeding
// the ledger state.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/frame"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// acceptTimeout bounds each accept call so the listener can observe a
// shutdown signal between accepts.
const acceptTimeout = time.Second

// Config represents the mandatory settings required to run the server.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Host  string
}

// Server owns the TCP listener and the set of live sessions.
type Server struct {
	log      *zap.SugaredLogger
	state    *state.State
	host     string
	listener *net.TCPListener
	shutdown chan struct{}
	wg       sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*session
}

// session owns one client connection. Responses and broadcasts funnel
// through the out channel so a single writer goroutine serializes all
// writes to the connection.
type session struct {
	id   string
	conn net.Conn
	out  chan string
}

// New constructs a Server ready to start.
func New(cfg Config) *Server {
	return &Server{
		log:      cfg.Log,
		state:    cfg.State,
		host:     cfg.Host,
		shutdown: make(chan struct{}),
		sessions: make(map[string]*session),
	}
}

// Start binds the listener and begins accepting connections. It returns
// once the listener is bound; accepted sessions run on their own goroutines.
func (srv *Server) Start() error {
	addr, err := net.ResolveTCPAddr("tcp", srv.host)
	if err != nil {
		return fmt.Errorf("resolving host: %w", err)
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding listener: %w", err)
	}
	srv.listener = listener

	srv.log.Infow("startup", "status", "tcp protocol listening", "host", srv.host)

	srv.wg.Add(1)
	go srv.accept()

	return nil
}

// Addr returns the bound listener address.
func (srv *Server) Addr() net.Addr {
	return srv.listener.Addr()
}

// Shutdown stops accepting connections, closes all live sessions and waits
// for their goroutines to drain, bounded by the context.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.log.Infow("shutdown", "status", "stopping tcp protocol")

	close(srv.shutdown)
	srv.listener.Close()

	srv.mu.Lock()
	for _, ses := range srv.sessions {
		ses.conn.Close()
	}
	srv.mu.Unlock()

	done := make(chan struct{})
	go func() {
		srv.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================

// accept runs the bounded poll loop handing each connection to a session
// goroutine.
func (srv *Server) accept() {
	defer srv.wg.Done()

	for {
		select {
		case <-srv.shutdown:
			return
		default:
		}

		srv.listener.SetDeadline(time.Now().Add(acceptTimeout))

		conn, err := srv.listener.Accept()
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			select {
			case <-srv.shutdown:
			default:
				srv.log.Errorw("accept", "ERROR", err)
			}
			return
		}

		ses := session{
			id:   uuid.NewString(),
			conn: conn,
			out:  make(chan string, 100),
		}

		srv.mu.Lock()
		srv.sessions[ses.id] = &ses
		active := len(srv.sessions)
		srv.mu.Unlock()

		srv.log.Infow("new connection", "addr", conn.RemoteAddr(), "active", active)

		srv.wg.Add(2)
		go srv.write(&ses)
		go srv.read(&ses)
	}
}

// write drains the session's outbound channel onto the connection. After a
// write failure it keeps draining so the reader never blocks on enqueue.
func (srv *Server) write(ses *session) {
	defer srv.wg.Done()

	var failed bool
	for msg := range ses.out {
		if failed {
			continue
		}
		if err := frame.Write(ses.conn, msg); err != nil {
			failed = true
			ses.conn.Close()
		}
	}
}

// read owns the session loop: read one framed message, dispatch it, queue
// the response. The loop ends on the disconnect sentinel, a read failure or
// a malformed length header.
func (srv *Server) read(ses *session) {
	defer srv.wg.Done()

	addr := ses.conn.RemoteAddr()

	defer func() {
		srv.mu.Lock()
		delete(srv.sessions, ses.id)
		srv.mu.Unlock()

		close(ses.out)
		ses.conn.Close()

		srv.log.Infow("disconnected", "addr", addr)
	}()

	for {
		msg, err := frame.Read(ses.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				srv.log.Infow("session closed", "addr", addr, "ERROR", err)
			}
			return
		}

		if msg == frame.Disconnect {
			return
		}

		resp, broadcast := srv.route(context.Background(), msg)

		ses.out <- resp

		if broadcast != "" {
			srv.broadcast(ses.id, broadcast)
		}
	}
}

// broadcast queues a message to every live session except the one that
// triggered it. A session with a full outbound buffer misses the broadcast
// rather than stalling everyone else.
func (srv *Server) broadcast(exceptID string, msg string) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	for id, ses := range srv.sessions {
		if id == exceptID {
			continue
		}
		select {
		case ses.out <- msg:
		default:
		}
	}
}
