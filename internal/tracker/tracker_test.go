package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/heliograph/heliograph/pkg/config"
	"go.uber.org/zap"
)

func TestRecomputePublishesSnapshots(t *testing.T) {
	locs := []config.LocationData{
		{
			Name:      "home",
			Latitude:  51.5072,
			Longitude: -0.1276,
			TimeZone:  "Europe/London",
			Subjects: []config.SubjectData{
				{Name: "next-sunrise", Rule: "event", Event: "sunrise"},
				{Name: "sun-sample", Rule: "midnight"},
			},
		},
	}

	var wg sync.WaitGroup
	trk, err := New(context.Background(), &wg, locs, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer trk.Stop()

	for _, s := range trk.subjects {
		trk.recompute(s, trk.logger)
	}

	snaps := trk.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}

	byName := make(map[string]SubjectSnapshot)
	for _, snap := range snaps {
		byName[snap.Subject] = snap
	}

	sunrise := byName["next-sunrise"]
	if sunrise.Absent {
		t.Error("sunrise should not be absent in London")
	}
	if sunrise.EventAt == nil {
		t.Fatal("sunrise snapshot has no event instant")
	}
	if !sunrise.EventAt.After(time.Now()) {
		t.Errorf("next sunrise %v should be in the future", sunrise.EventAt)
	}

	sample := byName["sun-sample"]
	if sample.Elevation == nil || sample.Sun == nil {
		t.Fatal("midnight sample snapshot missing elevation or sun classification")
	}
	if *sample.Elevation < -90 || *sample.Elevation > 90 {
		t.Errorf("elevation = %.2f out of range", *sample.Elevation)
	}
	if sample.NextDue == nil {
		t.Fatal("midnight sample has no next due instant")
	} else if got := sample.NextDue.In(time.UTC); !got.After(time.Now()) {
		t.Errorf("next due %v should be in the future", got)
	}

	if got := trk.LocationSnapshots("home"); len(got) != 2 {
		t.Errorf("LocationSnapshots(home) = %d entries, want 2", len(got))
	}
	if got := trk.LocationSnapshots("elsewhere"); len(got) != 0 {
		t.Errorf("LocationSnapshots(elsewhere) = %d entries, want 0", len(got))
	}
}
