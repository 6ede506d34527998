package marketdata

import (
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
)

func TestNewPolygonProvider_RequiresKey(t *testing.T) {
	p, err := NewPolygonProvider("")
	if !errors.Is(err, ErrMissingCredentials) || p != nil {
		t.Fatalf("empty key: p=%v err=%v", p, err)
	}

	p, err = NewPolygonProvider("key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != ProviderPolygon {
		t.Fatalf("name = %q", p.Name())
	}
}

func TestPolygonBars(t *testing.T) {
	day := func(d int) models.Millis {
		return models.Millis(time.Date(2024, 1, d, 5, 0, 0, 0, time.UTC))
	}
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	bars := polygonBars([]models.Agg{
		{Timestamp: day(2), High: 150, Close: 148},
		{Timestamp: day(3), High: 160, Close: 120},
		{Timestamp: day(4), High: 170, Close: 169},
	}, end)

	// the aggregate at or after end is excluded
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[1].High != 160 || bars[1].Close.Unwrap() != 120 {
		t.Fatalf("unexpected bar %+v", bars[1])
	}
	if want := time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC); !bars[1].Date.Equal(want) {
		t.Fatalf("date = %v, want %v", bars[1].Date, want)
	}
}
