// Package gamificationv1 declares the gamification.v1.Gamification gRPC
// service. Every method takes and returns a google.protobuf.Struct so the
// service can be called with grpcurl and reflection without a schema build step.
package gamificationv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gamification.v1.Gamification"

// Method names of the service.
const (
	MethodRecordSession   = "RecordSession"
	MethodRecordPurchase  = "RecordPurchase"
	MethodRecordReferral  = "RecordReferral"
	MethodRecordReview    = "RecordReview"
	MethodRecordLevelUp   = "RecordLevelUp"
	MethodGetBalance      = "GetBalance"
	MethodGetHistory      = "GetHistory"
	MethodGetAchievements = "GetAchievements"
	MethodGetMilestones   = "GetMilestones"
	MethodGetLeaderboard  = "GetLeaderboard"
	MethodUpdateProgress  = "UpdateProgress"
	MethodRedeem          = "Redeem"
	MethodFulfill         = "Fulfill"
	MethodCancel          = "Cancel"
	MethodListRewards     = "ListRewards"
	MethodListRedemptions = "ListRedemptions"
	MethodAdjustPoints    = "AdjustPoints"
	MethodGetSettings     = "GetSettings"
	MethodUpdateSettings  = "UpdateSettings"

	MethodCreateReward          = "CreateReward"
	MethodUpdateReward          = "UpdateReward"
	MethodPublishAchievement    = "PublishAchievement"
	MethodDeactivateAchievement = "DeactivateAchievement"
	MethodPublishMilestone      = "PublishMilestone"
	MethodAwardAchievement      = "AwardAchievement"
)

// GamificationServer is the server API for the Gamification service.
type GamificationServer interface {
	RecordSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordPurchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordReferral(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordReview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordLevelUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAchievements(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMilestones(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLeaderboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProgress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Redeem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Fulfill(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cancel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRewards(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRedemptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdjustPoints(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateReward(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateReward(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PublishAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeactivateAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PublishMilestone(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AwardAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedGamificationServer must be embedded to have forward compatible implementations.
type UnimplementedGamificationServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedGamificationServer) RecordSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRecordSession)
}
func (UnimplementedGamificationServer) RecordPurchase(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRecordPurchase)
}
func (UnimplementedGamificationServer) RecordReferral(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRecordReferral)
}
func (UnimplementedGamificationServer) RecordReview(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRecordReview)
}
func (UnimplementedGamificationServer) RecordLevelUp(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRecordLevelUp)
}
func (UnimplementedGamificationServer) GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetBalance)
}
func (UnimplementedGamificationServer) GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetHistory)
}
func (UnimplementedGamificationServer) GetAchievements(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetAchievements)
}
func (UnimplementedGamificationServer) GetMilestones(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetMilestones)
}
func (UnimplementedGamificationServer) GetLeaderboard(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetLeaderboard)
}
func (UnimplementedGamificationServer) UpdateProgress(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodUpdateProgress)
}
func (UnimplementedGamificationServer) Redeem(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRedeem)
}
func (UnimplementedGamificationServer) Fulfill(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodFulfill)
}
func (UnimplementedGamificationServer) Cancel(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodCancel)
}
func (UnimplementedGamificationServer) ListRewards(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodListRewards)
}
func (UnimplementedGamificationServer) ListRedemptions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodListRedemptions)
}
func (UnimplementedGamificationServer) AdjustPoints(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodAdjustPoints)
}
func (UnimplementedGamificationServer) GetSettings(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetSettings)
}
func (UnimplementedGamificationServer) UpdateSettings(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodUpdateSettings)
}
func (UnimplementedGamificationServer) CreateReward(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodCreateReward)
}
func (UnimplementedGamificationServer) UpdateReward(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodUpdateReward)
}
func (UnimplementedGamificationServer) PublishAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodPublishAchievement)
}
func (UnimplementedGamificationServer) DeactivateAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodDeactivateAchievement)
}
func (UnimplementedGamificationServer) PublishMilestone(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodPublishMilestone)
}
func (UnimplementedGamificationServer) AwardAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodAwardAchievement)
}

type unaryMethod func(GamificationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(method string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GamificationServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(GamificationServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// Gamification_ServiceDesc is the grpc.ServiceDesc for the Gamification service.
var Gamification_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GamificationServer)(nil),
	Methods: []grpc.MethodDesc{
		handler(MethodRecordSession, GamificationServer.RecordSession),
		handler(MethodRecordPurchase, GamificationServer.RecordPurchase),
		handler(MethodRecordReferral, GamificationServer.RecordReferral),
		handler(MethodRecordReview, GamificationServer.RecordReview),
		handler(MethodRecordLevelUp, GamificationServer.RecordLevelUp),
		handler(MethodGetBalance, GamificationServer.GetBalance),
		handler(MethodGetHistory, GamificationServer.GetHistory),
		handler(MethodGetAchievements, GamificationServer.GetAchievements),
		handler(MethodGetMilestones, GamificationServer.GetMilestones),
		handler(MethodGetLeaderboard, GamificationServer.GetLeaderboard),
		handler(MethodUpdateProgress, GamificationServer.UpdateProgress),
		handler(MethodRedeem, GamificationServer.Redeem),
		handler(MethodFulfill, GamificationServer.Fulfill),
		handler(MethodCancel, GamificationServer.Cancel),
		handler(MethodListRewards, GamificationServer.ListRewards),
		handler(MethodListRedemptions, GamificationServer.ListRedemptions),
		handler(MethodAdjustPoints, GamificationServer.AdjustPoints),
		handler(MethodGetSettings, GamificationServer.GetSettings),
		handler(MethodUpdateSettings, GamificationServer.UpdateSettings),
		handler(MethodCreateReward, GamificationServer.CreateReward),
		handler(MethodUpdateReward, GamificationServer.UpdateReward),
		handler(MethodPublishAchievement, GamificationServer.PublishAchievement),
		handler(MethodDeactivateAchievement, GamificationServer.DeactivateAchievement),
		handler(MethodPublishMilestone, GamificationServer.PublishMilestone),
		handler(MethodAwardAchievement, GamificationServer.AwardAchievement),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamification/v1/gamification.proto",
}

// RegisterGamificationServer registers srv on s.
func RegisterGamificationServer(s grpc.ServiceRegistrar, srv GamificationServer) {
	s.RegisterService(&Gamification_ServiceDesc, srv)
}

// GamificationClient calls the Gamification service.
type GamificationClient struct {
	cc grpc.ClientConnInterface
}

// NewGamificationClient creates a client on top of a connection.
func NewGamificationClient(cc grpc.ClientConnInterface) *GamificationClient {
	return &GamificationClient{cc: cc}
}

// Call invokes one unary method by name.
func (c *GamificationClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
