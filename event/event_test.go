// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/escrow/event"
	"github.com/blinklabs-io/escrow/internal/test/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testEvtType event.EventType = "test.event"

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	return testutil.RequireReceive(t, ch, testutil.DefaultTimeout, "event")
}

func TestEventBusSubscribers(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	_, otherCh := eb.Subscribe("other.event")
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch} {
		evt := receive(t, ch)
		assert.Equal(t, testEvtType, evt.Type)
		assert.Equal(t, 999, evt.Data)
	}
	assert.Empty(t, otherCh)
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	select {
	case _, ok := <-subCh:
		require.False(t, ok, "received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatalf("subscriber channel was not closed after Unsubscribe")
	}
	// Unknown subscriptions are ignored
	eb.Unsubscribe(testEvtType, subId)
}

func TestEventBusSubscribeFunc(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	var count atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		count.Add(1)
	})
	for i := range 5 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	testutil.WaitForCondition(
		t,
		func() bool { return count.Load() == 5 },
		testutil.DefaultTimeout,
		"subscriber func calls",
	)
	eb.Stop()
}

func TestEventBusStop(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "x"))
	evt := receive(t, subCh)
	assert.Equal(t, "x", evt.Data)
	eb.Stop()
	eb.Stop()
	testutil.RequireClosed(t, subCh, testutil.DefaultTimeout, "subscriber channel")
	// Publishing after Stop must not panic on the closed channel
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "y"))
}

func TestEventBusFullSubscriberDoesNotBlock(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	done := make(chan struct{})
	go func() {
		for i := range event.EventQueueSize + 5 {
			eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Len(t, subCh, event.EventQueueSize)
	assert.InDelta(t, 5, counterValue(t, reg, "escrow_event_delivery_errors_total"), 0)
	assert.InDelta(
		t,
		event.EventQueueSize+5,
		counterValue(t, reg, "escrow_event_published_total"),
		0,
	)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var ret float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			ret += m.GetCounter().GetValue()
		}
	}
	return ret
}
