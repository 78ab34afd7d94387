package common

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
)

func TestInterceptorLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	InterceptorLogger(logger).Log(context.Background(), logging.LevelWarn, "finished call",
		"grpc.method", "Redeem", "grpc.code", "Aborted")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", entry.Level)
	}
	if entry.Message != "finished call" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Data["grpc.method"] != "Redeem" || entry.Data["grpc.code"] != "Aborted" {
		t.Errorf("expected fields to be carried over, got %v", entry.Data)
	}
}

func TestScope_TraceIDOnLogger(t *testing.T) {
	tp, err := NewTracerProvider("gamification-test", "test", 1)
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	scope := GetScopeFromContext(ctx, "child")
	defer scope.Finish()

	if scope.TraceID != span.SpanContext().TraceID().String() {
		t.Errorf("expected child scope to share the parent trace, got %s", scope.TraceID)
	}
	if scope.Log.Data[traceIdLogField] != scope.TraceID {
		t.Errorf("expected trace id on the logger, got %v", scope.Log.Data)
	}
}
