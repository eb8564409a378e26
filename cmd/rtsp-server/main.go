// Command rtsp-server runs the RTSP control-plane and RTP/RTCP relay
// server described by this module: it accepts ANNOUNCE/RECORD from a
// single Source per mount path and relays that Mount's RTP/RTCP traffic to
// any number of Clients that DESCRIBE/SETUP/PLAY it.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"github.com/bluenviron/rtsprelay/internal/api"
	"github.com/bluenviron/rtsprelay/internal/conf"
	"github.com/bluenviron/rtsprelay/internal/logger"
	"github.com/bluenviron/rtsprelay/internal/rtspserver"
)

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

// exit codes, per spec.md §6.
const (
	exitOK            = 0
	exitConfigError   = 1
	exitListenFailure = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	confPath := ""
	if len(args) > 0 {
		confPath = args[0]
	}

	cfg, err := conf.Load(confPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	srv := rtspserver.New(
		cfg.ListenAddress,
		cfg.RTPPortMin,
		cfg.RTPPortMax,
		secondsToDuration(cfg.ReadTimeoutSeconds),
		log,
	)

	addr := net.JoinHostPort(cfg.ListenAddress, strconv.Itoa(cfg.ListenPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitListenFailure
	}

	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	if cfg.APIListenAddress != "" {
		apiSrv := api.New(cfg.APIListenAddress, srv.Registry(), log)
		go func() {
			if err := apiSrv.ListenAndServe(); err != nil {
				log.Log(logger.Warn, "observability endpoint stopped: %v", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	log.Log(logger.Info, "listening on %s", addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		ln.Close()
		return exitOK

	case err := <-serveErr:
		fmt.Fprintln(os.Stderr, err)
		return exitListenFailure
	}
}
