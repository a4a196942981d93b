package websocket

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estimateForTest(req model.EstimateRequest) (model.EstimateResponse, error) {
	in, err := req.ToInput()
	if err != nil {
		return model.EstimateResponse{}, err
	}
	return model.NewEstimateResponse(estimate.Estimate(in)), nil
}

func newTestClient(hub *Hub, id string) *Client {
	return &Client{
		SessionID:   id,
		Send:        make(chan []byte, 10),
		Hub:         hub,
		ConnectedAt: time.Now(),
		lastPing:    time.Now(),
	}
}

// nextMessage lê a próxima mensagem enfileirada para o cliente
func nextMessage(t *testing.T, client *Client) outboundForTest {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg outboundForTest
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message queued")
	}
	return outboundForTest{}
}

type outboundForTest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestRegisterSendsWelcome(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")

	require.True(t, hub.registerClient(client))

	msg := nextMessage(t, client)
	assert.Equal(t, TypeConnection, msg.Type)
	assert.Contains(t, string(msg.Data), `"session_id":"s1"`)
	assert.Equal(t, 1, hub.GetConnectionCount())

	sessions := hub.GetSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].SessionID)
	assert.Equal(t, client.ConnectedAt, sessions[0].ConnectedAt)
}

func TestGetSessionsOrderedByConnection(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	now := time.Now()

	for i, id := range []string{"late", "early"} {
		client := newTestClient(hub, id)
		client.ConnectedAt = now.Add(-time.Duration(i) * time.Minute)
		hub.registerClient(client)
	}

	sessions := hub.GetSessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "early", sessions[0].SessionID)
	assert.Equal(t, "late", sessions[1].SessionID)
}

func TestPongUpdatesLastPing(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")
	client.lastPing = time.Time{}

	client.touch()

	assert.False(t, client.GetConnectionInfo().LastPing.IsZero())
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")
	hub.registerClient(client)
	nextMessage(t, client)

	hub.unregisterClient(client)
	_, open := <-client.Send
	assert.False(t, open)
	assert.Zero(t, hub.GetConnectionCount())

	// segunda chamada não fecha o canal de novo
	assert.NotPanics(t, func() { hub.unregisterClient(client) })
}

func TestEstimateMessageReturnsCost(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")
	hub.registerClient(client)
	nextMessage(t, client)

	client.handleMessage([]byte(`{"type":"estimate","data":{"process_time":30,"process_count":10,"time_unit":"seconds","period":"day","hourly_wage":20}}`))

	msg := nextMessage(t, client)
	require.Equal(t, TypeEstimate, msg.Type)

	var resp model.EstimateResponse
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	assert.Equal(t, "1.67", resp.CostDisplay)
	assert.Equal(t, estimate.Day, resp.Period)
}

func TestEstimateMessageWithUnknownPeriod(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")

	client.handleMessage([]byte(`{"type":"estimate","data":{"period":"fortnight"}}`))

	msg := nextMessage(t, client)
	assert.Equal(t, TypeError, msg.Type)
}

func TestMalformedAndUnknownMessages(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")

	client.handleMessage([]byte(`not json`))
	assert.Equal(t, TypeError, nextMessage(t, client).Type)

	client.handleMessage([]byte(`{"type":"subscribe"}`))
	assert.Equal(t, TypeError, nextMessage(t, client).Type)

	client.handleMessage([]byte(`{"type":"ping"}`))
	assert.Equal(t, TypePong, nextMessage(t, client).Type)
}

func TestSendAfterUnregisterIsDropped(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := newTestClient(hub, "s1")
	hub.registerClient(client)
	nextMessage(t, client)

	hub.unregisterClient(client)

	assert.NotPanics(t, func() {
		assert.False(t, client.SendMessage(TypePong, nil))
	})
	assert.NotPanics(t, func() {
		client.handleMessage([]byte(`{"type":"ping"}`))
	})
}

func TestFullSendChannelDropsMessage(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	client := &Client{SessionID: "s1", Send: make(chan []byte, 1), Hub: hub}

	assert.True(t, client.SendMessage(TypePong, nil))
	assert.False(t, client.SendMessage(TypePong, nil))
}

func TestHubLimit(t *testing.T) {
	hub := NewHub(estimateForTest, 2)
	assert.Equal(t, 2, hub.MaxConnections())

	for i := 0; i < 2; i++ {
		assert.False(t, hub.full())
		assert.True(t, hub.registerClient(newTestClient(hub, fmt.Sprintf("s%d", i))))
	}
	assert.True(t, hub.full())
}

func TestRegisterRejectsAboveLimit(t *testing.T) {
	hub := NewHub(estimateForTest, 1)
	go hub.Run()
	defer hub.Stop()

	first := newTestClient(hub, "s1")
	second := newTestClient(hub, "s2")

	// os dois passaram pelo pré-check antes de qualquer registro
	assert.False(t, hub.full())
	hub.register <- first
	hub.register <- second

	assert.Equal(t, TypeConnection, nextMessage(t, first).Type)
	assert.Equal(t, TypeError, nextMessage(t, second).Type)

	_, open := <-second.Send
	assert.False(t, open, "rejected session must be closed")
	assert.Equal(t, 1, hub.GetConnectionCount())
	assert.False(t, second.SendMessage(TypePong, nil))
}

func TestRunStopClosesSessions(t *testing.T) {
	hub := NewHub(estimateForTest, 0)
	go hub.Run()

	client := newTestClient(hub, "s1")
	hub.register <- client
	nextMessage(t, client)

	hub.Stop()
	hub.Stop()

	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("session not closed on stop")
	}

	// o readPump ainda pode responder depois do Stop
	assert.NotPanics(t, func() {
		assert.False(t, client.SendMessage(TypePong, nil))
	})
}

// **Feature: process-cost-calculator, Property 9: Live recalculation matches direct estimate**
// Cada edição recebida pela sessão produz exatamente o custo do cálculo direto.
func TestLiveRecalculationConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("live estimate equals direct estimate", prop.ForAll(
		func(processTime, count, wage float64, unitIdx, periodIdx int) bool {
			hub := NewHub(estimateForTest, 0)
			client := newTestClient(hub, "s")

			req := model.EstimateRequest{
				ProcessTime:  processTime,
				ProcessCount: count,
				TimeUnit:     string(estimate.TimeUnits()[unitIdx]),
				Period:       string(estimate.Periods()[periodIdx]),
				HourlyWage:   wage,
			}
			payload, err := json.Marshal(map[string]interface{}{"type": TypeEstimate, "data": req})
			if err != nil {
				return false
			}
			client.handleMessage(payload)

			var msg outboundForTest
			if err := json.Unmarshal(<-client.Send, &msg); err != nil || msg.Type != TypeEstimate {
				return false
			}
			var got model.EstimateResponse
			if err := json.Unmarshal(msg.Data, &got); err != nil {
				return false
			}

			want, _ := estimateForTest(req)
			return got.Cost == want.Cost && got.CostDisplay == want.CostDisplay
		},
		gen.Float64Range(0, 1e4),
		gen.Float64Range(0, 1e3),
		gen.Float64Range(0, 1e3),
		gen.IntRange(0, len(estimate.TimeUnits())-1),
		gen.IntRange(0, len(estimate.Periods())-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
