package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type fakeBarGetter struct {
	bars  []alpacamd.Bar
	err   error
	block chan struct{}
	req   alpacamd.GetBarsRequest
}

func (f *fakeBarGetter) GetBars(_ string, req alpacamd.GetBarsRequest) ([]alpacamd.Bar, error) {
	f.req = req
	if f.block != nil {
		<-f.block
	}
	return f.bars, f.err
}

func TestNewAlpacaProvider_RequiresCredentials(t *testing.T) {
	if _, err := NewAlpacaProvider("key", "", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("missing secret: err = %v", err)
	}

	p, err := NewAlpacaProvider("key", "secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != ProviderAlpaca {
		t.Fatalf("name = %q", p.Name())
	}
}

func TestAlpacaProvider_History(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	fake := &fakeBarGetter{bars: []alpacamd.Bar{
		{Timestamp: time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC), High: 150, Close: 148},
		{Timestamp: time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC), High: 160, Close: 120},
		{Timestamp: end, High: 999, Close: 999},
	}}
	p := &AlpacaProvider{client: fake}

	bars, err := p.History(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[1].Close.Unwrap() != 120 {
		t.Fatalf("close = %v", bars[1].Close)
	}
	if fake.req.TimeFrame != alpacamd.OneDay || !fake.req.Start.Equal(start) {
		t.Fatalf("unexpected request %+v", fake.req)
	}
}

func TestAlpacaProvider_Errors(t *testing.T) {
	cases := []struct {
		name    string
		getter  *fakeBarGetter
		wantErr error
	}{
		{name: "api error", getter: &fakeBarGetter{err: errors.New("forbidden")}},
		{name: "no bars", getter: &fakeBarGetter{}, wantErr: ErrNoData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &AlpacaProvider{client: tc.getter}
			_, err := p.History(context.Background(), "AAPL", time.Now().AddDate(-1, 0, 0), time.Now())
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAlpacaProvider_ContextDone(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	p := &AlpacaProvider{client: &fakeBarGetter{block: block}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.History(ctx, "AAPL", time.Now().AddDate(-1, 0, 0), time.Now())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
