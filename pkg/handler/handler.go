package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	// Default page sizes
	DefaultHistoryLimit     = 50
	MaxHistoryLimit         = 500
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// toStatus maps a domain error to a gRPC status by its kind.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch state.KindOf(err) {
	case state.KindValidation:
		code = codes.InvalidArgument
	case state.KindConflict:
		code = codes.FailedPrecondition
	case state.KindContention:
		code = codes.Aborted
	case state.KindNotFound:
		code = codes.NotFound
	}
	return status.Errorf(code, "%s: %v", state.CodeOf(err), err)
}

// request reads typed fields out of a Struct message.
type request struct {
	fields map[string]*structpb.Value
}

func newRequest(in *structpb.Struct) request {
	return request{fields: in.GetFields()}
}

func (r request) String(key string) string {
	return r.fields[key].GetStringValue()
}

func (r request) Bool(key string) bool {
	return r.fields[key].GetBoolValue()
}

// Has reports whether the field is present and not null.
func (r request) Has(key string) bool {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return false
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return !null
}

// Require fails with a validation error when a string field is empty.
func (r request) Require(keys ...string) error {
	for _, key := range keys {
		if r.String(key) == "" {
			return fmt.Errorf("%w: %s is required", state.ErrInvalidEntry, key)
		}
	}
	return nil
}

// Int accepts a whole number or a numeric string; missing fields are zero.
func (r request) Int(key string) (int64, error) {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return 0, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > (1<<53) {
			return 0, fmt.Errorf("%w: %s must be a whole number", state.ErrInvalidEntry, key)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil || !d.IsInteger() {
			return 0, fmt.Errorf("%w: %s must be a whole number", state.ErrInvalidEntry, key)
		}
		return d.IntPart(), nil
	case *structpb.Value_NullValue:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", state.ErrInvalidEntry, key)
	}
}

// Decimal accepts a number or a decimal string, so currency amounts keep their precision.
func (r request) Decimal(key string) (decimal.Decimal, error) {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return decimal.Zero, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s is not a decimal: %v", state.ErrInvalidEntry, key, err)
		}
		return d, nil
	case *structpb.Value_NullValue:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s must be a decimal", state.ErrInvalidEntry, key)
	}
}

// Time parses an RFC 3339 timestamp; a missing field is the zero time.
func (r request) Time(key string) (time.Time, error) {
	s := r.String(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s is not an RFC 3339 timestamp", state.ErrInvalidEntry, key)
	}
	return t.UTC(), nil
}

// decode unmarshals the whole message into v through its JSON form.
func decode(in *structpb.Struct, v interface{}) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", state.ErrInvalidEntry, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", state.ErrInvalidEntry, err)
	}
	return nil
}

var errEncode = errors.New("failed to encode response")

// toStruct encodes v into a Struct through its JSON form.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errEncode, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("%w: %v", errEncode, err)
	}
	return out, nil
}
