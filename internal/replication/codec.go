package replication

import (
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		// Stamps carry sub-second increments, so whole-second Unix time would
		// collapse consecutive writes.
		Time: cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient so older and newer clients can read each other's snapshots.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// EncodeState encodes a session snapshot.
func EncodeState(s domain.SharedSessionState) ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("encode session state: running=%t with started_at=%v", s.IsRunning, s.StartedAt)
	}
	return encMode.Marshal(s)
}

// DecodeState decodes a session snapshot and rejects one whose running flag
// and start time disagree.
func DecodeState(data []byte) (domain.SharedSessionState, error) {
	var s domain.SharedSessionState
	if err := decMode.Unmarshal(data, &s); err != nil {
		return domain.SharedSessionState{}, fmt.Errorf("decode session state: %w", err)
	}
	if !s.Valid() {
		return domain.SharedSessionState{}, fmt.Errorf("decode session state: running=%t with started_at=%v", s.IsRunning, s.StartedAt)
	}
	return s, nil
}

func EncodePreferences(p domain.SharedPreferences) ([]byte, error) {
	return encMode.Marshal(p)
}

func DecodePreferences(data []byte) (domain.SharedPreferences, error) {
	var p domain.SharedPreferences
	if err := decMode.Unmarshal(data, &p); err != nil {
		return domain.SharedPreferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

// envelope is the value stored in a KV bucket: the snapshot bytes plus the
// writer's timestamp, which the bucket itself does not keep.
type envelope struct {
	UpdatedAt time.Time `cbor:"1,keyasint"`
	Value     []byte    `cbor:"2,keyasint"`
}

func encodeEnvelope(value []byte, ts time.Time) ([]byte, error) {
	return encMode.Marshal(envelope{UpdatedAt: ts.UTC(), Value: value})
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
