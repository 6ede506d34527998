package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

func TestDrawdownService_GetDrawdowns(t *testing.T) {
	p := &stubProvider{bars: map[string][]models.Bar{
		"AAPL":  daily(120, 150, 160, 155),
		"CRASH": daily(60, 100),
	}}
	tickers := []string{"AAPL", "MISSING", "CRASH"}
	svc := NewDrawdownService(NewAggregator(p), tickers)
	svc.(*drawdownService).now = func() time.Time { return asOf }

	// caller mutations must not leak into the service
	tickers[0] = "CHANGED"

	got := svc.GetDrawdowns(context.Background())
	if want := []string{"AAPL", "CRASH"}; !reflect.DeepEqual(tickersOf(got), want) {
		t.Fatalf("results %v, want %v", tickersOf(got), want)
	}
	if want := []string{"AAPL", "MISSING", "CRASH"}; !reflect.DeepEqual(svc.Tickers(), want) {
		t.Fatalf("tickers %v, want %v", svc.Tickers(), want)
	}
}

func TestDrawdownService_RefetchesEveryCall(t *testing.T) {
	p := &stubProvider{bars: map[string][]models.Bar{"AAPL": daily(120, 160)}}
	svc := NewDrawdownService(NewAggregator(p), []string{"AAPL"})
	svc.(*drawdownService).now = func() time.Time { return asOf }

	_ = svc.GetDrawdowns(context.Background())
	_ = svc.GetDrawdowns(context.Background())
	if len(p.calls) != 2 {
		t.Fatalf("got %d fetches, want 2", len(p.calls))
	}
}
