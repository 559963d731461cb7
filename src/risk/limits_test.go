package risk

import "testing"

func TestLimitsManagerRejectsInvalidUpdate(t *testing.T) {
	manager := NewLimitsManager(DefaultLimits())
	before := manager.Current()

	bad := DefaultLimits()
	bad.MaxSectorExposurePct = 1.5

	if err := manager.Update(bad); err == nil {
		t.Fatal("expected invalid update to be rejected")
	}

	if manager.Current() != before {
		t.Fatal("last-known-good configuration was corrupted by a bad update")
	}
}

func TestLimitsManagerAppliesValidUpdate(t *testing.T) {
	manager := NewLimitsManager(DefaultLimits())

	next := DefaultLimits()
	next.MaxSharesPerTrade = 250
	if err := manager.Update(next); err != nil {
		t.Fatalf("unexpected error applying valid update: %v", err)
	}

	if manager.Current().MaxSharesPerTrade != 250 {
		t.Fatalf("update not visible, got %d", manager.Current().MaxSharesPerTrade)
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Limits)
		wantErr bool
	}{
		{"defaults valid", func(l *Limits) {}, false},
		{"negative shares", func(l *Limits) { l.MaxSharesPerTrade = -1 }, true},
		{"negative loss limit", func(l *Limits) { l.DailyLossLimit = -10 }, true},
		{"participation above 1", func(l *Limits) { l.MaxADVParticipationPct = 1.1 }, true},
		{"sector cap disabled", func(l *Limits) { l.MaxSectorExposurePct = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := DefaultLimits()
			tt.mutate(&limits)
			err := limits.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
