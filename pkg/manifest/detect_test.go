// pkg/manifest/detect_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test manifest change detection semantics

package manifest_test

import (
	"testing"

	"github.com/atollweb/atoll/pkg/manifest"
	"github.com/atollweb/atoll/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestChanged(t *testing.T) {
	tests := []struct {
		name string
		prev types.Manifest
		cur  types.Manifest
		want bool
	}{
		{
			name: "identical",
			prev: types.Manifest{Routes: []string{"a"}},
			cur:  types.Manifest{Routes: []string{"a"}},
			want: false,
		},
		{
			name: "route_added",
			prev: types.Manifest{Routes: []string{"a"}},
			cur:  types.Manifest{Routes: []string{"a", "b"}},
			want: true,
		},
		{
			name: "route_removed",
			prev: types.Manifest{Routes: []string{"a", "b"}},
			cur:  types.Manifest{Routes: []string{"a"}},
			want: true,
		},
		{
			name: "order_difference_counts",
			prev: types.Manifest{Routes: []string{"a", "b"}},
			cur:  types.Manifest{Routes: []string{"b", "a"}},
			want: true,
		},
		{
			name: "island_change",
			prev: types.Manifest{Routes: []string{"a"}, Islands: []string{"x"}},
			cur:  types.Manifest{Routes: []string{"a"}, Islands: []string{"y"}},
			want: true,
		},
		{
			name: "both_empty",
			prev: types.Manifest{},
			cur:  types.Manifest{},
			want: false,
		},
		{
			name: "first_run_with_routes",
			prev: types.Manifest{},
			cur:  types.Manifest{Routes: []string{"a"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manifest.Changed(tt.prev, tt.cur))
		})
	}
}
