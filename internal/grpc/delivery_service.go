package grpcserver

import (
	"context"
	"errors"
	"time"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/auth"
	"droneFoodDelivery/internal/lifecycle"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DeliveryServiceName is the fully qualified gRPC service name.
const DeliveryServiceName = "fooddelivery.delivery.v1.DeliveryService"

// Full method names.
const (
	MethodAssignDrone      = "/" + DeliveryServiceName + "/AssignDrone"
	MethodCompleteDelivery = "/" + DeliveryServiceName + "/CompleteDelivery"
	MethodGetStatus        = "/" + DeliveryServiceName + "/GetStatus"
)

// DeliveryServiceServer is the server API for DeliveryService. Every method
// takes an order id.
type DeliveryServiceServer interface {
	AssignDrone(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CompleteDelivery(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetStatus(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

type orderCall func(DeliveryServiceServer, context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)

func orderHandler(fullMethod string, call orderCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.Int64Value)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DeliveryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DeliveryServiceServer), ctx, req.(*wrapperspb.Int64Value))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DeliveryServiceDesc describes DeliveryService for grpc.Server.RegisterService.
var DeliveryServiceDesc = grpc.ServiceDesc{
	ServiceName: DeliveryServiceName,
	HandlerType: (*DeliveryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AssignDrone", Handler: orderHandler(MethodAssignDrone, DeliveryServiceServer.AssignDrone)},
		{MethodName: "CompleteDelivery", Handler: orderHandler(MethodCompleteDelivery, DeliveryServiceServer.CompleteDelivery)},
		{MethodName: "GetStatus", Handler: orderHandler(MethodGetStatus, DeliveryServiceServer.GetStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fooddelivery/delivery/v1/delivery.proto",
}

// RegisterDeliveryServiceServer registers srv on s.
func RegisterDeliveryServiceServer(s grpc.ServiceRegistrar, srv DeliveryServiceServer) {
	s.RegisterService(&DeliveryServiceDesc, srv)
}

// DeliveryServiceClient calls DeliveryService over a client connection.
type DeliveryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDeliveryServiceClient returns a client bound to cc.
func NewDeliveryServiceClient(cc grpc.ClientConnInterface) *DeliveryServiceClient {
	return &DeliveryServiceClient{cc: cc}
}

func (c *DeliveryServiceClient) invoke(ctx context.Context, method string, orderID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, wrapperspb.Int64(orderID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DeliveryServiceClient) AssignDrone(ctx context.Context, orderID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodAssignDrone, orderID, opts...)
}

func (c *DeliveryServiceClient) CompleteDelivery(ctx context.Context, orderID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCompleteDelivery, orderID, opts...)
}

func (c *DeliveryServiceClient) GetStatus(ctx context.Context, orderID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetStatus, orderID, opts...)
}

// DeliveryServer implements DeliveryServiceServer on top of the lifecycle service.
type DeliveryServer struct {
	Service *lifecycle.Service
	Drones  *repository.DroneRepository
}

var _ DeliveryServiceServer = (*DeliveryServer)(nil)

// AssignDrone dispatches a paid order. Operators and drones may dispatch.
func (s *DeliveryServer) AssignDrone(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if _, err := auth.RequireDroneOrAdmin(ctx); err != nil {
		return nil, err
	}
	d, err := s.Service.AssignDrone(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return deliveryStruct(d, models.OrderStatusInTransit)
}

// CompleteDelivery closes an in-transit delivery. A drone may only complete
// its own delivery; operators may complete any.
func (s *DeliveryServer) CompleteDelivery(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	p, err := auth.RequireDroneOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	orderID := in.GetValue()
	if p.Kind == auth.KindDrone {
		if err := s.checkDroneOwns(ctx, p.Name, orderID); err != nil {
			return nil, err
		}
	}
	d, err := s.Service.CompleteDelivery(ctx, orderID)
	if err != nil {
		return nil, toStatus(err)
	}
	return deliveryStruct(d, models.OrderStatusDelivered)
}

// GetStatus returns the order's current status.
func (s *DeliveryServer) GetStatus(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if _, err := auth.RequireDroneOrAdmin(ctx); err != nil {
		return nil, err
	}
	st, err := s.Service.GetStatus(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"OrderID": in.GetValue(),
		"Status":  string(st),
	})
}

func (s *DeliveryServer) checkDroneOwns(ctx context.Context, serial string, orderID int64) error {
	dr, err := s.Drones.GetBySerial(ctx, serial)
	if err != nil {
		return status.Errorf(codes.Unavailable, "resolve drone: %v", err)
	}
	if dr == nil {
		return status.Error(codes.PermissionDenied, "unknown drone")
	}
	d, err := s.Service.GetDelivery(ctx, orderID)
	if err != nil {
		return toStatus(err)
	}
	if d.DroneID != dr.ID {
		return status.Error(codes.PermissionDenied, "delivery belongs to another drone")
	}
	return nil
}

func deliveryStruct(d *models.Delivery, orderStatus models.OrderStatus) (*structpb.Struct, error) {
	fields := map[string]any{
		"OrderID":    d.OrderID,
		"DeliveryID": d.ID,
		"DroneID":    d.DroneID,
		"Status":     string(orderStatus),
		"StartTime":  d.StartTime.UTC().Format(time.RFC3339),
	}
	if d.EndTime != nil {
		fields["EndTime"] = d.EndTime.UTC().Format(time.RFC3339)
	}
	return structpb.NewStruct(fields)
}

// toStatus maps lifecycle errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var code codes.Code
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		code = codes.NotFound
	case apperr.KindInvalidState, apperr.KindEmptyOrder:
		code = codes.FailedPrecondition
	case apperr.KindInvalidReference, apperr.KindInvalidItem, apperr.KindInvalidInput:
		code = codes.InvalidArgument
	case apperr.KindNoDroneAvailable:
		code = codes.ResourceExhausted
	case apperr.KindPersistence:
		code = codes.Unavailable
	case apperr.KindConflict:
		code = codes.AlreadyExists
	case apperr.KindUnauthorized:
		code = codes.Unauthenticated
	case apperr.KindForbidden:
		code = codes.PermissionDenied
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			code = codes.DeadlineExceeded
		} else {
			code = codes.Internal
		}
	}
	return status.Error(code, err.Error())
}
