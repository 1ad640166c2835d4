package events

import (
	"context"
	"errors"
	"testing"

	"github.com/prepflow/backoffice/internal/domain/models"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.Subscribe(func(ctx context.Context, ev models.CostChanged) error {
		order = append(order, "first:"+ev.Name)
		return nil
	})
	bus.Subscribe(func(ctx context.Context, ev models.CostChanged) error {
		order = append(order, "second:"+ev.Name)
		return nil
	})

	if err := bus.Publish(context.Background(), models.CostChanged{Name: "Flour"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(order) != 2 || order[0] != "first:Flour" || order[1] != "second:Flour" {
		t.Errorf("delivery order = %v", order)
	}
}

func TestBusContinuesPastFailingSubscriber(t *testing.T) {
	bus := NewBus(nil)
	boom := errors.New("boom")

	var secondRan bool
	bus.Subscribe(func(ctx context.Context, ev models.CostChanged) error {
		return boom
	})
	bus.Subscribe(func(ctx context.Context, ev models.CostChanged) error {
		secondRan = true
		return nil
	})

	err := bus.Publish(context.Background(), models.CostChanged{Name: "Flour"})
	if !errors.Is(err, boom) {
		t.Errorf("Publish = %v, want wrapped boom", err)
	}
	if !secondRan {
		t.Error("second subscriber did not run after first failed")
	}
}

func TestBusWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Publish(context.Background(), models.CostChanged{Name: "Flour"}); err != nil {
		t.Errorf("Publish with no subscribers = %v", err)
	}
}
