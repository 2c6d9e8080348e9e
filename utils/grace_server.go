package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second

	// A restarted child finds the listening socket at fd 3 and this marker
	// in its environment.
	inheritEnvKey = "TRACKER_INHERIT_LISTENER"
	inheritEnvVar = inheritEnvKey + "=1"
	inheritedFd   = 3
)

// graceServer runs an HTTP server that drains connections on SIGTERM and, on
// SIGUSR2, forks a replacement process that inherits the listener so the
// address never goes dark during a deploy.
type graceServer struct {
	httpServer *http.Server
	listener   net.Listener
	inherited  bool
	signals    chan os.Signal
	drained    chan struct{}
}

// GraceServer serves handler on addr until terminated. It blocks for the
// life of the process.
func GraceServer(addr string, handler http.Handler) error {
	srv := &graceServer{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  serverReadTimeout,
			WriteTimeout: serverWriteTimeout,
		},
		inherited: os.Getenv(inheritEnvKey) != "",
		signals:   make(chan os.Signal, 1),
		drained:   make(chan struct{}),
	}

	ln, err := srv.listen(addr)
	if err != nil {
		return err
	}
	srv.listener = ln

	go srv.watchSignals()
	serveErr := srv.httpServer.Serve(ln)
	// Serve returns ErrServerClosed the moment Shutdown begins; wait for the
	// drain to actually finish before letting the process exit.
	<-srv.drained
	return serveErr
}

func (s *graceServer) listen(addr string) (net.Listener, error) {
	if s.inherited {
		ln, err := net.FileListener(os.NewFile(inheritedFd, ""))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

func (s *graceServer) watchSignals() {
	signal.Notify(s.signals, syscall.SIGTERM, syscall.SIGUSR2)
	for sig := range s.signals {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("SIGTERM received, draining connections")
			s.drain()
		case syscall.SIGUSR2:
			Sugar.Info("SIGUSR2 received, handing off to new process")
			pid, err := s.forkChild()
			if err != nil {
				Sugar.Errorf("handoff failed, continuing to serve: %v", err)
				continue
			}
			Sugar.Infof("child started pid=%d, draining old server", pid)
			s.drain()
		}
	}
}

func (s *graceServer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		Sugar.Errorf("shutdown: %v", err)
	} else {
		Sugar.Info("server drained")
	}
	close(s.drained)
}

// forkChild re-execs the current binary with the listening socket as fd 3.
func (s *graceServer) forkChild() (int, error) {
	tcpLn, ok := s.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is %T, cannot hand off", s.listener)
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("listener file: %w", err)
	}

	env := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != inheritEnvVar {
			env = append(env, e)
		}
	}
	env = append(env, inheritEnvVar)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}
