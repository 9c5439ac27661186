package discount

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestClientDiscountFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/discounts/iPhone 15":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"productName":"iPhone 15","description":"Holiday discount","amountCents":5000}`))
		case "/api/discounts/Broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/api/discounts/Garbage":
			_, _ = w.Write([]byte("{not json"))
		case "/api/discounts/Negative":
			_, _ = w.Write([]byte(`{"productName":"Negative","amountCents":-100}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())

	cases := []struct {
		name    string
		product string
		want    int64
	}{
		{"known coupon", "iPhone 15", 5000},
		{"no coupon", "Toothbrush", 0},
		{"server error", "Broken", 0},
		{"undecodable body", "Garbage", 0},
		{"negative amount", "Negative", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := client.DiscountFor(context.Background(), tc.product)
			if got != tc.want {
				t.Errorf("DiscountFor(%q) = %d, want %d", tc.product, got, tc.want)
			}
		})
	}
}

func TestClientUnreachableServiceAnswersZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	client := NewClient(srv.URL, 100*time.Millisecond, zap.NewNop())
	if got := client.DiscountFor(context.Background(), "iPhone 15"); got != 0 {
		t.Errorf("unreachable service must answer zero, got %d", got)
	}
}

func TestClientTimeoutAnswersZero(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	client := NewClient(srv.URL, 50*time.Millisecond, zap.NewNop())
	if got := client.DiscountFor(context.Background(), "iPhone 15"); got != 0 {
		t.Errorf("slow service must answer zero, got %d", got)
	}
}
