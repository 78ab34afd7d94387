package handler

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
	pb "github.com/AccelByte/extend-fitness-gamification/pkg/pb/gamification/v1"
	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
	"github.com/AccelByte/extend-fitness-gamification/pkg/progress"
	"github.com/AccelByte/extend-fitness-gamification/pkg/redemption"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service/servicetest"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/signal/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// setupTestService wires the service on miniredis-backed stores without bonus rules
func setupTestService(t *testing.T) (*Gamification, *service.Stores) {
	t.Helper()

	stores, _ := servicetest.NewStores(t)
	return newTestService(stores, stores.Settings, nil), stores
}

// newTestService wires the service on stores, reading settings from settingsStore
func newTestService(stores *service.Stores, settingsStore service.SettingsStore, publisher notify.Publisher) *Gamification {
	loader := signal.NewStoreContextLoader(stores.Ledger, stores.Progress, settingsStore)
	processor := signal.NewProcessor(loader)
	signalBuiltin.RegisterEventProcessors(processor.GetEventProcessorRegistry())

	tracker := progress.NewTracker(stores.UnitOfWork, stores.Ledger, stores.Progress, stores.Catalog, publisher)
	engine := rule.NewEngine(rule.NewRegistry(), rule.NewDependencies().WithStores(stores).WithTracker(tracker))

	return NewGamification(Dependencies{
		Pipeline:    pipeline.NewManager(processor, engine, loader, nil),
		Engine:      engine,
		Tracker:     tracker,
		Redemptions: redemption.NewManager(stores.UnitOfWork, stores.Ledger, stores.Rewards),
		Ledger:      stores.Ledger,
		Settings:    settingsStore,
		Catalog:     stores.Catalog,
	})
}

// startTestServer serves srv over an in-memory listener and returns a connected client
func startTestServer(t *testing.T, srv pb.GamificationServer) *pb.GamificationClient {
	t.Helper()

	listener := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	pb.RegisterGamificationServer(server, srv)
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewGamificationClient(conn)
}

// mustStruct builds a request message, failing the test on unsupported values
func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	in, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	return in
}

func seedRewards(t *testing.T, stores *service.Stores, rewards ...state.Reward) {
	t.Helper()
	if err := stores.Rewards.SeedRewards(context.Background(), rewards); err != nil {
		t.Fatalf("failed to seed rewards: %v", err)
	}
}
