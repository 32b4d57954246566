package room

import (
	"context"
	"time"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/wssender"
)

type DesyncCommand int

const (
	DesyncWake DesyncCommand = iota
	DesyncSleep
)

func (s *service) wakeDesync() {
	select {
	case s.desyncCmd <- DesyncWake:
	default:
	}
}

func (s *service) sleepDesync() {
	select {
	case s.desyncCmd <- DesyncSleep:
	default:
	}
}

// RunDesyncSupervisor owns the lifetime of the correction loop. Wake spawns
// the loop if it is not running, Sleep cancels it, so no ticks burn cycles
// while every room is paused.
func (s *service) RunDesyncSupervisor(ctx context.Context) {
	var cancel context.CancelFunc
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.desyncCmd:
			switch cmd {
			case DesyncWake:
				if cancel == nil {
					var loopCtx context.Context
					loopCtx, cancel = context.WithCancel(ctx)
					go s.runDesyncLoop(loopCtx)
					s.logger.DebugContext(ctx, "desync controller started")
				}
			case DesyncSleep:
				if cancel != nil {
					cancel()
					cancel = nil
					s.logger.DebugContext(ctx, "desync controller stopped")
				}
			}
		}
	}
}

// runDesyncLoop ticks on a fixed deadline-driven cadence so transient
// stalls do not drift the schedule.
func (s *service) runDesyncLoop(ctx context.Context) {
	next := time.Now().Add(s.cfg.DesyncTick)
	timer := time.NewTimer(s.cfg.DesyncTick)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.DesyncTick(ctx, s.clock.Now())
			next = next.Add(s.cfg.DesyncTick)
			timer.Reset(time.Until(next))
		}
	}
}

// DesyncTick runs one pass of the correction algorithm over every room.
// Reads are snapshot-consistent per store; emissions are pure observations
// of the snapshot, so a cancelled tick can at worst deliver some of them.
func (s *service) DesyncTick(ctx context.Context, now time.Time) {
	for _, rid := range s.state.Rooms.Ids() {
		s.desyncRoom(ctx, rid, now)
	}
}

func (s *service) desyncRoom(ctx context.Context, rid domain.RoomId, now time.Time) {
	pb, err := s.state.Playback.Snapshot(rid)
	if err != nil || pb.State != domain.Playing || pb.ActiveEntry == nil {
		return
	}
	settings, err := s.state.Rooms.Settings(rid)
	if err != nil {
		return
	}

	// members come back sorted by uid, which makes the ordering of
	// concurrent corrections deterministic
	members := s.state.Membership.Members(rid)
	if len(members) == 0 {
		return
	}

	speed := pb.Speed.InexactFloat64()
	minorSlow := settings.MinorDesyncPlaybackSlow.InexactFloat64()
	majorMin := settings.MajorDesyncMin.InexactFloat64()
	tickSec := s.cfg.DesyncTick.Seconds()

	// latency-compensated timestamp: reported value advanced by the time
	// the report spent in flight plus the user's observed round trip,
	// scaled by playback speed
	comps := make(map[domain.UserId]float64, len(members))
	smallest := 0.0
	haveRelevant := false
	for _, uid := range members {
		sample, ok := s.state.Timestamps.Get(uid)
		if !ok {
			continue
		}
		ping, _ := s.state.Pings.Get(uid)
		comp := sample.Value + (now.Sub(sample.ArrivedAt).Seconds()+ping)*speed
		comps[uid] = comp

		if now.Sub(sample.ArrivedAt) <= s.cfg.TimestampMaxAge {
			if !haveRelevant || comp < smallest {
				smallest = comp
			}
			haveRelevant = true
		}
	}
	if !haveRelevant {
		return
	}

	for _, uid := range members {
		comp, ok := comps[uid]
		if !ok {
			continue
		}
		diff := comp - smallest

		switch {
		case majorMin > 0 && diff >= majorMin:
			// visible seek back to the convergence target; the server's
			// belief about the user's position is rewritten so the next
			// tick does not fire again before the client catches up
			if s.state.Minor.Remove(uid) {
				s.sender.ToUser(ctx, uid, &wssender.Output{Type: EventMinorDesyncStop})
			}
			s.state.Timestamps.Set(uid, smallest, now)
			s.sender.ToUser(ctx, uid, &wssender.Output{
				Type:    EventMajorDesyncSeek,
				Payload: map[string]float64{"t": smallest},
			})

		case s.state.Minor.Contains(uid):
			if diff <= 0 {
				s.state.Minor.Remove(uid)
				s.sender.ToUser(ctx, uid, &wssender.Output{Type: EventMinorDesyncStop})
				continue
			}
			// project one tick ahead: this user advances at
			// speed-minorSlow while the rest run at full speed, so the
			// gap closes by minorSlow*tick per tick; release early when
			// the projected gap undershoots a tick's worth of drift
			nextDiff := diff - minorSlow*tickSec
			if nextDiff < tickSec {
				s.state.Minor.Remove(uid)
				s.sender.ToUser(ctx, uid, &wssender.Output{Type: EventMinorDesyncStop})
			}

		default:
			if minorSlow > 0 && diff >= minorSlow {
				s.state.Minor.Add(uid)
				s.sender.ToUser(ctx, uid, &wssender.Output{Type: EventMinorDesyncStart})
			}
		}
	}
}
