package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"carol/internal/daemon"
	"carol/internal/logging"
	"carol/internal/media"
	"carol/internal/storage"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Carol", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

// persistenceWarning splits a storage write failure off from hard errors.
// The mutation already happened in memory, so the response carries the
// result plus a warning instead of failing the call.
func persistenceWarning(err error) (string, bool) {
	var writeErr *storage.WriteError
	if errors.As(err, &writeErr) {
		return writeErr.Error(), true
	}
	return "", false
}

func (s *service) Compose(req ComposeRequest, resp *ComposeResponse) error {
	greeting, address, err := s.daemon.Compose(s.ctx, daemon.ComposeRequest{
		Author:              req.Author,
		Body:                req.Body,
		Photo:               media.Payload(req.Photo),
		ExternalAudioRef:    req.ExternalAudioRef,
		ExternalAudioActive: req.ExternalAudioActive,
		UseRecording:        req.UseRecording,
		VideoURL:            req.VideoURL,
	})
	if err != nil {
		warning, soft := persistenceWarning(err)
		if !soft {
			return err
		}
		resp.Unpersisted = true
		resp.Warning = warning
	}
	resp.Greeting = greeting
	resp.ShareAddress = address
	s.logger.Info("greeting composed via IPC",
		logging.String("greeting_id", greeting.ID))
	return nil
}

func (s *service) AddReply(req AddReplyRequest, resp *AddReplyResponse) error {
	reply, err := s.daemon.AddReply(s.ctx, req.GreetingID, req.Author, req.Body)
	if err != nil {
		warning, soft := persistenceWarning(err)
		if !soft {
			return err
		}
		resp.Unpersisted = true
		resp.Warning = warning
	}
	resp.Reply = reply
	return nil
}

func (s *service) List(_ ListRequest, resp *ListResponse) error {
	resp.Greetings = s.daemon.ListGreetings()
	return nil
}

func (s *service) Describe(req DescribeRequest, resp *DescribeResponse) error {
	greeting, err := s.daemon.DescribeGreeting(req.Ref)
	if err != nil {
		return err
	}
	resp.Greeting = greeting
	return nil
}

func (s *service) Share(req ShareRequest, resp *ShareResponse) error {
	address, err := s.daemon.ShareGreeting(req.GreetingID)
	if err != nil {
		return err
	}
	resp.Address = address
	return nil
}

func (s *service) Register(req RegisterRequest, resp *RegisterResponse) error {
	account, err := s.daemon.Register(s.ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}
	resp.Email = account.Email
	resp.DisplayName = account.DisplayName
	s.logger.Info("account registered via IPC", logging.String("email", account.Email))
	return nil
}

func (s *service) Login(req LoginRequest, resp *LoginResponse) error {
	account, err := s.daemon.Login(s.ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	resp.Email = account.Email
	resp.DisplayName = account.DisplayName
	return nil
}

func (s *service) Logout(_ LogoutRequest, resp *LogoutResponse) error {
	if err := s.daemon.Logout(s.ctx); err != nil {
		return err
	}
	resp.LoggedOut = true
	return nil
}

func (s *service) Whoami(_ WhoamiRequest, resp *WhoamiResponse) error {
	account, ok := s.daemon.CurrentAccount()
	resp.SignedIn = ok
	if ok {
		resp.Email = account.Email
		resp.DisplayName = account.DisplayName
	}
	return nil
}

func (s *service) RecordToggle(_ RecordToggleRequest, resp *RecordToggleResponse) error {
	status, err := s.daemon.ToggleRecording()
	resp.Status = status
	return err
}

func (s *service) RecordStatus(_ RecordStatusRequest, resp *RecordStatusResponse) error {
	resp.Status = s.daemon.RecordingStatus()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.GreetingCount = status.GreetingCount
	resp.Capture = status.Capture
	resp.SessionEmail = status.SessionEmail
	resp.DBPath = status.DBPath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = status.SocketPath
	resp.MonitorActive = status.MonitorActive
	return nil
}

func (s *service) Health(_ HealthRequest, resp *HealthResponse) error {
	health, err := s.daemon.StorageHealth(s.ctx)
	resp.Health = health
	return err
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.Pong = true
	return nil
}
