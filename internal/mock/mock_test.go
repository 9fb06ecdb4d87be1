package mock

import (
	"slices"
	"strings"
	"testing"
)

func TestNames(t *testing.T) {
	want := []string{"complete", "critical", "dev", "error", "thinking"}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestGenerate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Generate(name)
			if err != nil {
				t.Fatal(err)
			}
			if !s.Payload.Mock {
				t.Error("payload not marked as mock")
			}
			if !strings.HasPrefix(s.Payload.SessionID, "mock-"+name+"-") {
				t.Errorf("session id = %q", s.Payload.SessionID)
			}
			snap := s.Snapshot()
			if snap.ContextUsed() != s.ContextUsed {
				t.Errorf("context used = %d, want %d", snap.ContextUsed(), s.ContextUsed)
			}
			if snap.History.Cost.Total.TotalCostUSD != s.Payload.Cost.TotalCostUSD {
				t.Errorf("cost total = %v", snap.History.Cost.Total.TotalCostUSD)
			}
		})
	}
}

func TestGenerate_UniqueSessionIDs(t *testing.T) {
	a, _ := Generate("dev")
	b, _ := Generate("dev")
	if a.Payload.SessionID == b.Payload.SessionID {
		t.Error("session ids should differ between runs")
	}
}

func TestGenerate_Unknown(t *testing.T) {
	if _, err := Generate("nope"); err == nil {
		t.Error("expected error")
	}
	if Valid("nope") || !Valid("critical") {
		t.Error("Valid mismatch")
	}
}
