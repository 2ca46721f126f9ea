package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// LoggingInterceptor logs procedure, duration and result code of every call.
type LoggingInterceptor struct {
	now func() time.Time
}

// NewLoggingInterceptor creates a logging interceptor.
func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{now: time.Now}
}

var _ connect.Interceptor = (*LoggingInterceptor)(nil)

// WrapUnary implements connect.Interceptor.
func (i *LoggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := i.now()
		res, err := next(ctx, req)
		if req.Spec().IsClient {
			return res, err
		}
		i.log(req.Spec().Procedure, req.Peer().Addr, start, err)
		return res, err
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *LoggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *LoggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := i.now()
		zlog.Debug().Msgf("stream opened: procedure=%s peer=%s", conn.Spec().Procedure, conn.Peer().Addr)
		err := next(ctx, conn)
		i.log(conn.Spec().Procedure, conn.Peer().Addr, start, err)
		return err
	}
}

func (i *LoggingInterceptor) log(procedure, peer string, start time.Time, err error) {
	elapsed := i.now().Sub(start).Round(time.Millisecond)
	code := "ok"
	level := zerolog.InfoLevel
	if err != nil {
		c := connect.CodeOf(err)
		code = c.String()
		switch c {
		case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeCanceled:
			level = zerolog.WarnLevel
		default:
			level = zerolog.ErrorLevel
		}
	}

	ev := zlog.WithLevel(level)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msgf("rpc: procedure=%s peer=%s code=%s elapsed=%s", procedure, peer, code, elapsed)
}
