package params_test

import (
	"fmt"

	"github.com/cwbudde/algo-comp/dsp/params"
)

func ExampleStore() {
	store := params.NewStore()

	// Control context: a UI or automation lane moves the controls.
	store.SetThreshold(-18)
	store.SetRatio(4)
	store.SetAttack(1) // clamped to 5 ms

	// Audio context: read one snapshot per block.
	p := store.Snapshot()
	fmt.Printf("threshold=%.0f attack=%.0f release=%.0f ratio=%.1f\n",
		p.ThresholdDB, p.AttackMs, p.ReleaseMs, p.Ratio)

	// Output:
	// threshold=-18 attack=5 release=250 ratio=4.0
}
