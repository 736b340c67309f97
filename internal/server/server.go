package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/gnet/v2"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lojhan/symtable/internal/resp"
)

const DefaultAddr = "tcp://127.0.0.1:6380"

var ErrNotRunning = errors.New("server is not running")

type CommandHandler = func(args []resp.Value) resp.Value

// CommandHook runs after every dispatched command while the execution
// lock is still held.
type CommandHook func(name string, result resp.Value)

// ErrorHook runs whenever the server answers with an error, with one of
// the Reason* values. It may be called from several event loops at once.
type ErrorHook func(reason string)

const (
	ReasonProtocol       = "protocol"
	ReasonUnknownCommand = "unknown_command"
	ReasonCommand        = "command"
)

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMulticore(multicore bool) Option {
	return func(s *Server) {
		s.multicore = multicore
	}
}

func WithCommandHook(hook CommandHook) Option {
	return func(s *Server) {
		s.hook = hook
	}
}

func WithErrorHook(hook ErrorHook) Option {
	return func(s *Server) {
		s.errHook = hook
	}
}

// Stats are cumulative counters since the server was created.
type Stats struct {
	Connections int64
	Commands    int64
	Errors      int64
}

// Server speaks RESP over gnet event loops. Every command runs under one
// lock, so handlers may share a single-threaded table.
type Server struct {
	gnet.BuiltinEventEngine

	handlers  map[string]CommandHandler
	handlerMu sync.RWMutex
	execMu    sync.Mutex
	hook      CommandHook
	errHook   ErrorHook

	logger    *zap.Logger
	multicore bool

	engine  gnet.Engine
	running *atomic.Bool
	ready   chan struct{}

	connections *atomic.Int64
	commands    *atomic.Int64
	errors      *atomic.Int64
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		handlers:    make(map[string]CommandHandler),
		logger:      zap.NewNop(),
		running:     atomic.NewBool(false),
		ready:       make(chan struct{}),
		connections: atomic.NewInt64(0),
		commands:    atomic.NewInt64(0),
		errors:      atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) RegisterCommand(name string, handler CommandHandler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.handlers[strings.ToUpper(name)] = handler
}

func (s *Server) GetHandler(name string) CommandHandler {
	s.handlerMu.RLock()
	defer s.handlerMu.RUnlock()
	return s.handlers[strings.ToUpper(name)]
}

// Start blocks serving addr (for example "tcp://127.0.0.1:6380") until Stop
// is called or the engine fails.
func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	err := gnet.Run(s, addr,
		gnet.WithMulticore(s.multicore),
		gnet.WithReusePort(true),
		gnet.WithLogger(s.logger.Sugar()),
	)
	s.running.Store(false)
	if err != nil {
		return fmt.Errorf("failed to serve %s: %w", addr, err)
	}
	return nil
}

// Ready is closed once the event loops accept connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	return s.engine.Stop(ctx)
}

func (s *Server) Running() bool {
	return s.running.Load()
}

func (s *Server) Stats() Stats {
	return Stats{
		Connections: s.connections.Load(),
		Commands:    s.commands.Load(),
		Errors:      s.errors.Load(),
	}
}

func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.engine = eng
	s.running.Store(true)
	close(s.ready)
	s.logger.Info("symbol table server ready", zap.Bool("multicore", s.multicore))
	return gnet.None
}

func (s *Server) OnShutdown(gnet.Engine) {
	s.logger.Info("symbol table server stopped")
}

func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	s.connections.Inc()
	s.logger.Debug("client connected", zap.Stringer("remote", c.RemoteAddr()))
	return nil, gnet.None
}

func (s *Server) OnClose(c gnet.Conn, err error) gnet.Action {
	if err != nil {
		s.logger.Debug("client disconnected", zap.Stringer("remote", c.RemoteAddr()), zap.Error(err))
	} else {
		s.logger.Debug("client disconnected", zap.Stringer("remote", c.RemoteAddr()))
	}
	return gnet.None
}

func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	in, err := c.Peek(-1)
	if err != nil {
		s.logger.Warn("failed to read from client", zap.Stringer("remote", c.RemoteAddr()), zap.Error(err))
		return gnet.Close
	}

	out := bytebufferpool.Get()
	defer bytebufferpool.Put(out)

	consumed, action := s.process(in, out)
	if consumed > 0 {
		if _, err := c.Discard(consumed); err != nil {
			return gnet.Close
		}
	}
	if out.Len() > 0 {
		if _, err := c.Write(out.B); err != nil {
			s.logger.Warn("failed to write response", zap.Stringer("remote", c.RemoteAddr()), zap.Error(err))
			return gnet.Close
		}
	}
	return action
}

// process answers every complete command at the front of in and returns how
// many bytes it used. A trailing partial command is left for the next read.
func (s *Server) process(in []byte, out *bytebufferpool.ByteBuffer) (int, gnet.Action) {
	consumed := 0
	for consumed < len(in) {
		value, n, err := resp.ParseBytes(in[consumed:])
		if errors.Is(err, resp.ErrIncomplete) {
			break
		}
		if err != nil {
			s.recordError(ReasonProtocol)
			s.logger.Debug("protocol error", zap.Error(err))
			out.B, _ = resp.AppendValue(out.B, resp.ErrorValue("ERR protocol error"))
			return len(in), gnet.Close
		}
		consumed += n

		out.B, err = resp.AppendValue(out.B, s.Execute(value))
		if err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
			return len(in), gnet.Close
		}
	}
	return consumed, gnet.None
}

// Execute dispatches one command value to its handler.
func (s *Server) Execute(value resp.Value) resp.Value {
	if value.Type != resp.Array {
		s.recordError(ReasonProtocol)
		return resp.ErrorValue("ERR protocol error: expected array")
	}

	if len(value.Array) == 0 {
		s.recordError(ReasonProtocol)
		return resp.ErrorValue("ERR empty command")
	}

	cmdValue := value.Array[0]
	if cmdValue.Type != resp.BulkString {
		s.recordError(ReasonProtocol)
		return resp.ErrorValue("ERR protocol error: command must be bulk string")
	}

	cmdName := strings.ToUpper(cmdValue.Str)
	handler := s.GetHandler(cmdName)
	if handler == nil {
		s.recordError(ReasonUnknownCommand)
		return resp.ErrorValue(fmt.Sprintf("ERR unknown command '%s'", cmdValue.Str))
	}

	s.execMu.Lock()
	defer s.execMu.Unlock()

	result := handler(value.Array[1:])
	s.commands.Inc()
	if result.Type == resp.Error {
		s.recordError(ReasonCommand)
	}
	if s.hook != nil {
		s.hook(cmdName, result)
	}
	return result
}

func (s *Server) recordError(reason string) {
	s.errors.Inc()
	if s.errHook != nil {
		s.errHook(reason)
	}
}
