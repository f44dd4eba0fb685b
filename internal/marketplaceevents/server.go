package marketplaceevents

import (
	"sync"

	"go.uber.org/zap"
)

// Service implements Server, fanning out published events to every
// connected GetMarketplaceEvents stream that matches its filter,
// mirroring the teacher's ContractEventServer's per-request filtering
// in shouldIncludeEvent.
type Service struct {
	log *zap.Logger

	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	req StreamRequest
	ch  chan *Event
}

func NewService(log *zap.Logger) *Service {
	return &Service{log: log, subs: make(map[int]*subscriber)}
}

// Publish fans e out to every matching subscriber. Slow subscribers
// are dropped rather than blocking the projection pipeline: the
// channel is buffered and a full channel just skips that subscriber
// for this event.
func (s *Service) Publish(e *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if !sub.matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			s.log.Warn("marketplaceevents: subscriber channel full, dropping event", zap.String("event_id", e.EventID))
		}
	}
}

func (sub *subscriber) matches(e *Event) bool {
	if e.BlockTimestamp < sub.req.FromBlockTimestamp {
		return false
	}
	if len(sub.req.ContractAddresses) > 0 {
		found := false
		for _, addr := range sub.req.ContractAddresses {
			if addr == e.ContractAddress {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(sub.req.EventKinds) > 0 {
		found := false
		for _, k := range sub.req.EventKinds {
			if k == e.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetMarketplaceEvents streams every published event matching req
// until the client disconnects or the stream's context is cancelled.
func (s *Service) GetMarketplaceEvents(req *StreamRequest, stream MarketplaceEvents_GetMarketplaceEventsServer) error {
	sub := &subscriber{req: *req, ch: make(chan *Event, 256)}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = sub
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-sub.ch:
			if err := stream.Send(e); err != nil {
				return err
			}
		}
	}
}
