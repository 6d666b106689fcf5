package brokerconsumer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/ucase"
	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeProcessor struct {
	mu     sync.Mutex
	calls  []entities.Domain
	values []map[string]string
	ids    []uuid.UUID
	err    error

	delay  time.Duration
	active int32
}

func (p *fakeProcessor) Predict(ctx context.Context, domain entities.Domain, values map[string]string) (entities.View, error) {
	if p.delay > 0 {
		atomic.AddInt32(&p.active, 1)
		time.Sleep(p.delay)
		atomic.AddInt32(&p.active, -1)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, domain)
	p.values = append(p.values, values)
	p.ids = append(p.ids, ucase.RequestIDFromContext(ctx))
	return entities.View{Domain: domain, Prediction: 1}, p.err
}

type fakeSession struct {
	sarama.ConsumerGroupSession

	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim

	messages chan *sarama.ConsumerMessage
}

func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestHandleSubmission(t *testing.T) {
	p := &fakeProcessor{}
	k := newKafkaConsumer(nil, "PredictionSubmissions", zap.NewNop(), p)

	id := uuid.New()
	value := []byte(`{"request_id":"` + id.String() + `","domain":"Stock","fields":{"open":"1","high":"2","low":"0.5","volume":"3","change":"-1","prev_price":"1.5"}}`)

	if err := k.handle(context.Background(), value); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(p.calls) != 1 || p.calls[0] != entities.DomainStock {
		t.Fatalf("unexpected calls: %v", p.calls)
	}
	if p.values[0]["change"] != "-1" || p.ids[0] != id {
		t.Fatalf("unexpected submission: %v %v", p.values[0], p.ids[0])
	}
}

func TestHandleRejectsMalformedMessages(t *testing.T) {
	p := &fakeProcessor{}
	k := newKafkaConsumer(nil, "PredictionSubmissions", zap.NewNop(), p)

	for _, value := range []string{`not json`, `{"domain":"weather","fields":{}}`} {
		if err := k.handle(context.Background(), []byte(value)); err == nil {
			t.Fatalf("%s: expected error", value)
		}
	}
	if len(p.calls) != 0 {
		t.Fatalf("malformed messages must not reach the processor: %v", p.calls)
	}
}

func TestHandleAssignsRequestID(t *testing.T) {
	p := &fakeProcessor{err: &entities.TransportError{StatusCode: 502}}
	k := newKafkaConsumer(nil, "PredictionSubmissions", zap.NewNop(), p)

	if err := k.handle(context.Background(), []byte(`{"domain":"loan","fields":{}}`)); err != nil {
		t.Fatalf("prediction failures are logged, not returned: %v", err)
	}
	if p.ids[0] == uuid.Nil {
		t.Fatal("expected a generated request id")
	}
}

func TestConsumeClaimMarksMessages(t *testing.T) {
	p := &fakeProcessor{}
	k := newKafkaConsumer(nil, "PredictionSubmissions", zap.NewNop(), p)

	messages := make(chan *sarama.ConsumerMessage, 2)
	messages <- &sarama.ConsumerMessage{Offset: 7, Value: []byte(`{"domain":"property","fields":{}}`)}
	messages <- &sarama.ConsumerMessage{Offset: 8, Value: []byte(`garbage`)}
	close(messages)

	session := &fakeSession{ctx: context.Background()}
	if err := k.ConsumeClaim(session, fakeClaim{messages: messages}); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	k.inflight.Wait()

	if len(session.marked) != 2 {
		t.Fatalf("every message must be marked, got %v", session.marked)
	}
	if len(p.calls) != 1 || p.calls[0] != entities.DomainProperty {
		t.Fatalf("unexpected calls: %v", p.calls)
	}
}

func TestSetupSignalsReady(t *testing.T) {
	k := newKafkaConsumer(nil, "PredictionSubmissions", zap.NewNop(), &fakeProcessor{})

	_ = k.Setup(nil)
	_ = k.Setup(nil)

	select {
	case <-k.ready:
	default:
		t.Fatal("ready must be closed after Setup")
	}
}

// fakeGroup drives one session over messages until ctx is cancelled, the way a
// sarama consumer group does.
type fakeGroup struct {
	sarama.ConsumerGroup

	messages    chan *sarama.ConsumerMessage
	consumeErr  error
	processor   *fakeProcessor
	closed      int32
	activeClose int32
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, handler sarama.ConsumerGroupHandler) error {
	if g.consumeErr != nil {
		return g.consumeErr
	}

	session := &fakeSession{ctx: ctx}
	if err := handler.Setup(session); err != nil {
		return err
	}

	claimDone := make(chan struct{})
	go func() {
		defer close(claimDone)
		_ = handler.ConsumeClaim(session, fakeClaim{messages: g.messages})
	}()

	<-ctx.Done()
	<-claimDone
	return handler.Cleanup(session)
}

func (g *fakeGroup) Close() error {
	if g.processor != nil {
		atomic.StoreInt32(&g.activeClose, atomic.LoadInt32(&g.processor.active))
	}
	atomic.AddInt32(&g.closed, 1)
	return nil
}

func TestRunDrainsHandlersBeforeClose(t *testing.T) {
	p := &fakeProcessor{delay: 20 * time.Millisecond}
	group := &fakeGroup{messages: make(chan *sarama.ConsumerMessage, 16), processor: p}
	k := newKafkaConsumer(group, "PredictionSubmissions", zap.NewNop(), p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	<-k.ready
	for i := 0; i < 8; i++ {
		group.messages <- &sarama.ConsumerMessage{
			Offset: int64(i),
			Value:  []byte(`{"domain":"stock","fields":{}}`),
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if atomic.LoadInt32(&group.closed) != 1 {
		t.Fatalf("group must be closed once, got %d", group.closed)
	}
	if got := atomic.LoadInt32(&group.activeClose); got != 0 {
		t.Fatalf("group closed with %d handlers still running", got)
	}
	if got := atomic.LoadInt32(&p.active); got != 0 {
		t.Fatalf("%d handlers still running after Run returned", got)
	}
}

func TestRunClosesGroupOnConsumeError(t *testing.T) {
	wantErr := errors.New("broker unavailable")
	group := &fakeGroup{consumeErr: wantErr}
	k := newKafkaConsumer(group, "PredictionSubmissions", zap.NewNop(), &fakeProcessor{})

	err := k.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v want %v", err, wantErr)
	}
	if atomic.LoadInt32(&group.closed) != 1 {
		t.Fatal("group must be closed after a consume error")
	}
}
