package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewUnaryAuthInterceptor authenticates every unary call with a bearer JWT
// and stores the Principal in the handler context. Methods named in public
// skip authentication.
func NewUnaryAuthInterceptor(secret string, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(public))
	for _, m := range public {
		open[strings.TrimSpace(m)] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return handler(ctx, req)
		}
		p, err := ParseFromMD(ctx, secret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// RequirePrincipal returns the caller or Unauthenticated.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	if p, ok := FromContext(ctx); ok {
		return p, nil
	}
	return nil, status.Error(codes.Unauthenticated, "missing principal")
}

// RequireAnyKind returns the caller if its kind is one of kinds, and
// PermissionDenied otherwise.
func RequireAnyKind(ctx context.Context, kinds ...string) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if strings.EqualFold(p.Kind, k) {
			return p, nil
		}
	}
	return nil, status.Errorf(codes.PermissionDenied, "only %s can perform this action", strings.Join(kinds, " or "))
}

func RequireKind(ctx context.Context, kind string) (*Principal, error) {
	return RequireAnyKind(ctx, kind)
}

func RequireDrone(ctx context.Context) (*Principal, error) {
	return RequireAnyKind(ctx, KindDrone)
}

func RequireDroneOrAdmin(ctx context.Context) (*Principal, error) {
	return RequireAnyKind(ctx, KindDrone, KindAdmin)
}
