package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"

	"xdao.co/lfpkg/storage/grpcstore"
	"xdao.co/lfpkg/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("lfpkg-stored", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	dir := fs.String("dir", "", "payload store directory")
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	maxMsg := fs.Int("max-msg-bytes", 0, "maximum gRPC message size (0 uses the gRPC default)")
	_ = fs.Parse(os.Args[1:])

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{Prefix: "lfpkg-stored", Level: lvl, ReportTimestamp: true})
	logger := slog.New(handler)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "--dir is required")
		os.Exit(2)
	}
	store, err := localfs.New(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	var opts []grpc.ServerOption
	if *maxMsg > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(*maxMsg), grpc.MaxSendMsgSize(*maxMsg))
	}
	s := grpc.NewServer(opts...)
	grpcstore.RegisterPayloadStoreServer(s, &grpcstore.Server{Store: store, Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		s.GracefulStop()
	}()

	logger.Info("listening", "addr", lis.Addr().String(), "dir", *dir)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
