package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecidePhoto(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want Decision
	}{
		{
			name: "no state at all",
			snap: Snapshot{},
			want: RejectNoStyle,
		},
		{
			name: "style selected, free use",
			snap: Snapshot{HasStyle: true},
			want: TransformConsumeStyle,
		},
		{
			name: "entitled with style",
			snap: Snapshot{Entitled: true, HasStyle: true},
			want: TransformKeepStyle,
		},
		{
			name: "entitled without style",
			snap: Snapshot{Entitled: true},
			want: RejectNoStyle,
		},
		{
			name: "awaiting proof",
			snap: Snapshot{AwaitingProof: true},
			want: AcceptProof,
		},
		{
			name: "awaiting proof beats selected style",
			snap: Snapshot{HasStyle: true, AwaitingProof: true},
			want: AcceptProof,
		},
		{
			name: "entitlement beats awaiting proof",
			snap: Snapshot{Entitled: true, HasStyle: true, AwaitingProof: true},
			want: TransformKeepStyle,
		},
		{
			name: "entitled awaiting proof without style",
			snap: Snapshot{Entitled: true, AwaitingProof: true},
			want: RejectNoStyle,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecidePhoto(tc.snap))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "transform_keep_style", TransformKeepStyle.String())
	assert.Equal(t, "transform_consume_style", TransformConsumeStyle.String())
	assert.Equal(t, "accept_proof", AcceptProof.String())
	assert.Equal(t, "reject_no_style", RejectNoStyle.String())
}
