// internal/gateway/mock.go
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Default behaviour of the mock backend.
const (
	DefaultMockSuccessRate = 0.7
	DefaultMockDelay       = 1500 * time.Millisecond
)

// Call is a request recorded by Mock.
type Call struct {
	Endpoint string
	Payload  any
}

// PushFunc delivers a host message back into the bridge.
type PushFunc func(ctx context.Context, raw []byte) error

// Mock stands in for the host when the overlay runs outside the game.
// Treatments succeed with SuccessRate after Delay.
type Mock struct {
	SuccessRate float64
	Delay       time.Duration
	Inventory   map[string]int

	mu    sync.Mutex
	rng   *rand.Rand
	calls []Call
	push  PushFunc
}

// NewMock creates a mock backend. A nil rng seeds one from the clock.
func NewMock(successRate float64, delay time.Duration, rng *rand.Rand) *Mock {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mock{
		SuccessRate: successRate,
		Delay:       delay,
		rng:         rng,
	}
}

// OnPush makes the mock answer treatments and vitals checks with host pushes too.
func (m *Mock) OnPush(fn PushFunc) {
	m.mu.Lock()
	m.push = fn
	m.mu.Unlock()
}

// Calls returns the recorded requests.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Endpoints returns the endpoints called, in order.
func (m *Mock) Endpoints() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Endpoint
	}
	return out
}

func (m *Mock) roll() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

// Post records the call and simulates the host's reply.
func (m *Mock) Post(ctx context.Context, endpoint string, payload any) (Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Endpoint: endpoint, Payload: payload})
	push := m.push
	m.mu.Unlock()

	switch endpoint {
	case EndpointMedicalTreatment:
		req, ok := payload.(TreatmentRequest)
		if !ok {
			return Response{}, fmt.Errorf("unexpected %s payload %T", endpoint, payload)
		}
		if err := m.wait(ctx); err != nil {
			return Response{}, err
		}
		return m.treat(ctx, req, push), nil

	case EndpointMedicalRequest:
		if push != nil {
			health := 60 + int(m.roll()*40)
			raw, _ := json.Marshal(map[string]any{
				"type": "vitals-response", "health": health, "isDead": false, "isUnconscious": false,
			})
			if err := push(ctx, raw); err != nil {
				return Response{}, err
			}
		}

	case EndpointGetInventory:
		m.mu.Lock()
		inv := m.Inventory
		m.mu.Unlock()
		data, err := json.Marshal(InventoryReply{Inventory: inv})
		if err != nil {
			return Response{}, err
		}
		return Response{Status: StatusSuccess, Data: data}, nil
	}
	return Response{Status: StatusSuccess}, nil
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(m.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Mock) treat(ctx context.Context, req TreatmentRequest, push PushFunc) Response {
	hasItem := m.roll() < m.SuccessRate

	resp := Response{Status: StatusSuccess}
	if !hasItem {
		resp = Response{
			Status:  StatusFailed,
			Message: fmt.Sprintf("You don't have %s in your inventory", req.Data.DisplayName),
		}
	}

	if push != nil {
		bodyPart := req.Data.BodyPart
		if bodyPart == "" {
			bodyPart = "patient"
		}
		msg := map[string]any{
			"type":     "medical-treatment-response",
			"success":  hasItem,
			"action":   req.Action,
			"bodyPart": bodyPart,
			"itemName": req.Data.DisplayName,
		}
		if !hasItem {
			msg["message"] = resp.Message
		}
		if raw, err := json.Marshal(msg); err == nil {
			_ = push(ctx, raw)
		}
	}
	return resp
}
