package grpcstore

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/storage"
)

// Server exposes a storage.Store over the PayloadStore gRPC service.
type Server struct {
	UnimplementedPayloadStoreServer
	Store storage.Store
	// Logger receives one Debug event per request. Nil discards.
	Logger *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *Server) Put(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	b := in.GetValue()
	id, err := s.Store.Put(b)
	if err != nil {
		return nil, mapErr(err)
	}
	// The backing store must honor the package-id contract too.
	if id != cidutil.PackageID(b) {
		return nil, status.Error(codes.DataLoss, storage.ErrDigestMismatch.Error())
	}
	s.logger().DebugContext(ctx, "put", "package_id", id, "bytes", len(b))
	return wrapperspb.String(id), nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	id := in.GetValue()
	if !cidutil.ValidPackageID(id) {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidPackageID.Error())
	}
	b, err := s.Store.Get(id)
	if err != nil {
		s.logger().DebugContext(ctx, "get failed", "package_id", id, "err", err)
		return nil, mapErr(err)
	}
	if err := storage.Verify(id, b); err != nil {
		return nil, status.Error(codes.DataLoss, err.Error())
	}
	s.logger().DebugContext(ctx, "get", "package_id", id, "bytes", len(b))
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Has(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	id := in.GetValue()
	if !cidutil.ValidPackageID(id) {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidPackageID.Error())
	}
	return wrapperspb.Bool(s.Store.Has(id)), nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidPackageID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, storage.ErrDigestMismatch):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, storage.ErrImmutable):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
