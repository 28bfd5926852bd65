package reagentmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncCommitAdvancesCounter(t *testing.T) {
	before := testutil.ToFloat64(commitsTotal)
	IncCommit()
	if after := testutil.ToFloat64(commitsTotal); after != before+1 {
		t.Errorf("reagent_commits_total = %v, want %v", after, before+1)
	}
}

func TestIncRetryAdvancesCounter(t *testing.T) {
	before := testutil.ToFloat64(retriesTotal)
	IncRetry()
	if after := testutil.ToFloat64(retriesTotal); after != before+1 {
		t.Errorf("reagent_retries_total = %v, want %v", after, before+1)
	}
}

func TestIncBlockAndParkAdvanceIndependently(t *testing.T) {
	beforeBlock := testutil.ToFloat64(blocksTotal)
	beforePark := testutil.ToFloat64(parksTotal)
	IncBlock()
	if after := testutil.ToFloat64(blocksTotal); after != beforeBlock+1 {
		t.Errorf("reagent_blocks_total = %v, want %v", after, beforeBlock+1)
	}
	if after := testutil.ToFloat64(parksTotal); after != beforePark {
		t.Errorf("reagent_parks_total = %v, want unchanged %v", after, beforePark)
	}
	IncPark()
	if after := testutil.ToFloat64(parksTotal); after != beforePark+1 {
		t.Errorf("reagent_parks_total = %v, want %v", after, beforePark+1)
	}
}

func TestIncCatalystReinstallAdvancesCounter(t *testing.T) {
	before := testutil.ToFloat64(catalystReinstallsTotal)
	IncCatalystReinstall()
	if after := testutil.ToFloat64(catalystReinstallsTotal); after != before+1 {
		t.Errorf("reagent_catalyst_reinstalls_total = %v, want %v", after, before+1)
	}
}
