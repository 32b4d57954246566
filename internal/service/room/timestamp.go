package room

import (
	"context"
	"fmt"
	"math"

	"github.com/syncmiru/server/internal/domain"
)

type IngestTimestampParams struct {
	Uid   domain.UserId
	Value float64
}

// IngestTimestamp records a client's reported media time together with its
// arrival instant. It is never broadcast; only the desync controller reads
// it.
func (s *service) IngestTimestamp(ctx context.Context, params *IngestTimestampParams) error {
	if math.IsNaN(params.Value) || math.IsInf(params.Value, 0) || params.Value < 0 {
		return fmt.Errorf("%w: timestamp must be a finite non-negative number", ErrValidation)
	}

	if _, ok := s.state.Membership.RoomOf(params.Uid); !ok {
		return ErrNotInRoom
	}

	s.state.Timestamps.Set(params.Uid, params.Value, s.clock.Now())

	return nil
}
