package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		name        string
		msg         string
		err         error
		wantText    string
		wantDetails bool
	}{
		{name: "message only", msg: "Too many requests", wantText: "Too many requests"},
		{name: "with cause", msg: "internal server error", err: errors.New("context deadline exceeded"),
			wantText: "internal server error: context deadline exceeded", wantDetails: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := time.Now()
			resp := NewErrorResponse(tc.msg, tc.err)

			if resp.Error() != tc.wantText {
				t.Fatalf("Error() = %q, want %q", resp.Error(), tc.wantText)
			}
			if resp.Timestamp.Before(before) {
				t.Fatalf("timestamp %v not stamped at construction", resp.Timestamp)
			}

			body, err := json.Marshal(resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var fields map[string]any
			if err := json.Unmarshal(body, &fields); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, ok := fields["message"]; !ok {
				t.Fatalf("message missing in %s", body)
			}
			if _, ok := fields["timestamp"]; !ok {
				t.Fatalf("timestamp missing in %s", body)
			}
			if _, ok := fields["error"]; ok != tc.wantDetails {
				t.Fatalf("error field present=%v, want %v in %s", ok, tc.wantDetails, body)
			}
			if tc.wantDetails && !strings.Contains(string(body), "deadline") {
				t.Fatalf("cause not serialized: %s", body)
			}
		})
	}
}
