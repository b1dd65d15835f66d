package whatsapp

import (
	"context"
	"testing"

	"github.com/sokolane/dukahub/internal/domain"
)

func TestRenderTemplate(t *testing.T) {
	store := &domain.Store{Name: "Duka Moja", Currency: "KES"}
	order := &domain.Order{OrderNumber: "ORD-20260829-0007", CustomerName: "Asha", TotalPayable: 1250.5}

	got := RenderTemplate("Hi {{customerName}}, {{storeName}} received {{orderNumber}} for {{total}}.", store, order)
	want := "Hi Asha, Duka Moja received ORD-20260829-0007 for KES 1250.50."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Unknown placeholders pass through untouched.
	if got := RenderTemplate("See {{tracking}}", store, order); got != "See {{tracking}}" {
		t.Fatalf("got %q", got)
	}
}

func TestSendSkipsWhenDisabledOrNoPhone(t *testing.T) {
	n := NewNotifier("token")
	store := &domain.Store{Name: "Duka", Currency: "KES"}
	order := &domain.Order{OrderNumber: "ORD-1", CustomerPhone: "254712000001"}

	// Disabled stores never send, and never error.
	if err := n.OrderCreated(context.Background(), store, order); err != nil {
		t.Fatalf("disabled store: %v", err)
	}

	store.WhatsApp = domain.WhatsAppConfig{Enabled: true, PhoneNumberID: "123"}
	order.CustomerPhone = ""
	if err := n.OrderPaid(context.Background(), store, order); err != nil {
		t.Fatalf("no phone: %v", err)
	}
}

func TestSendErrorsWhenUnconfigured(t *testing.T) {
	n := NewNotifier("")
	store := &domain.Store{WhatsApp: domain.WhatsAppConfig{Enabled: true, PhoneNumberID: "123"}}
	order := &domain.Order{OrderNumber: "ORD-1", CustomerPhone: "254712000001"}
	if err := n.OrderCreated(context.Background(), store, order); err == nil {
		t.Fatal("expected config error")
	}
}
