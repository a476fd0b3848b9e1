package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
)

const (
	// OperatorTokenHeader is the header name for operator authentication token.
	OperatorTokenHeader = "X-Operator-Token"
)

// NewOperatorAuthInterceptor creates an interceptor that validates operator
// tokens from request metadata for OperatorService methods.
func NewOperatorAuthInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			// Extract token from metadata
			got := req.Header().Get(OperatorTokenHeader)
			if got == "" || token == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}

			// Validate token
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				zlog.Warn().Msgf("operator auth failed: procedure=%s peer=%s", req.Spec().Procedure, req.Peer().Addr)
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}

			// Call next handler
			return next(ctx, req)
		}
	}
}

// NewOperatorTokenClientInterceptor creates an interceptor that attaches
// the operator token to outgoing requests.
func NewOperatorTokenClientInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set(OperatorTokenHeader, token)
			}
			return next(ctx, req)
		}
	}
}
