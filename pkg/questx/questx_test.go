package questx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyRequirement(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindVolunteers, ClassifyRequirement(999))
	require.Equal(t, KindFinancial, ClassifyRequirement(1000))
	require.Equal(t, KindFinancial, ClassifyRequirement(25000))
	require.Equal(t, KindVolunteers, ClassifyRequirement(0))
	require.Equal(t, KindVolunteers, ClassifyRequirement(-1500))
	require.Equal(t, KindVolunteers, ClassifyRequirement(999.99))
}

func TestRequirementKindFollowsTarget(t *testing.T) {
	t.Parallel()

	r := Requirement{CurrentValue: 5, TargetValue: 10}
	require.Equal(t, KindVolunteers, r.Kind())

	r.TargetValue = 5000
	require.Equal(t, KindFinancial, r.Kind())
}

func TestAggregateProgress(t *testing.T) {
	t.Parallel()

	t.Run("no steps is zero", func(t *testing.T) {
		require.Equal(t, 0, AggregateProgress(nil))
		require.Equal(t, 0, AggregateProgress([]Step{}))
	})

	t.Run("single step", func(t *testing.T) {
		require.Equal(t, 50, AggregateProgress([]Step{{Progress: 50}}))
	})

	t.Run("mean is rounded", func(t *testing.T) {
		require.Equal(t, 33, AggregateProgress([]Step{{Progress: 33}, {Progress: 34}, {Progress: 33}}))
		require.Equal(t, 67, AggregateProgress([]Step{{Progress: 66}, {Progress: 67}, {Progress: 67}}))
	})

	t.Run("halves round away from zero", func(t *testing.T) {
		require.Equal(t, 51, AggregateProgress([]Step{{Progress: 50}, {Progress: 51}}))
		require.Equal(t, 1, AggregateProgress([]Step{{Progress: 0}, {Progress: 1}}))
	})

	t.Run("inputs are not re-clamped", func(t *testing.T) {
		require.Equal(t, 150, AggregateProgress([]Step{{Progress: 200}, {Progress: 100}}))
	})
}

func TestProgressColor(t *testing.T) {
	t.Parallel()

	cases := map[int]ColorBand{
		-5:  ColorRed,
		0:   ColorRed,
		25:  ColorRed,
		26:  ColorOrange,
		50:  ColorOrange,
		51:  ColorYellow,
		75:  ColorYellow,
		76:  ColorGreen,
		99:  ColorGreen,
		100: ColorVictory,
		150: ColorVictory,
	}

	for in, want := range cases {
		require.Equal(t, want, ProgressColor(in), "progress %d", in)
	}
}

func TestApplyContribution(t *testing.T) {
	t.Parallel()

	t.Run("clamps to target", func(t *testing.T) {
		got := ApplyContribution(Requirement{CurrentValue: 500, TargetValue: 1000}, 600)
		require.Equal(t, 1000.0, got.CurrentValue)
		require.Equal(t, 1000.0, got.TargetValue)
	})

	t.Run("clamps at zero", func(t *testing.T) {
		got := ApplyContribution(Requirement{CurrentValue: 0, TargetValue: 10}, -5)
		require.Equal(t, 0.0, got.CurrentValue)
	})

	t.Run("plain addition inside the range", func(t *testing.T) {
		got := ApplyContribution(Requirement{CurrentValue: 3, TargetValue: 10}, 4)
		require.Equal(t, 7.0, got.CurrentValue)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		in := Requirement{CurrentValue: 1, TargetValue: 10}
		_ = ApplyContribution(in, 5)
		require.Equal(t, 1.0, in.CurrentValue)
	})
}

func TestStepProgress(t *testing.T) {
	t.Parallel()

	require.Equal(t, 50, StepProgress(Requirement{CurrentValue: 500, TargetValue: 1000}))
	require.Equal(t, 33, StepProgress(Requirement{CurrentValue: 1, TargetValue: 3}))
	require.Equal(t, 67, StepProgress(Requirement{CurrentValue: 2, TargetValue: 3}))
	require.Equal(t, 100, StepProgress(Requirement{CurrentValue: 12, TargetValue: 10}))
	require.Equal(t, 0, StepProgress(Requirement{CurrentValue: -4, TargetValue: 10}))
	require.Equal(t, 0, StepProgress(Requirement{CurrentValue: 4, TargetValue: 0}))
}
