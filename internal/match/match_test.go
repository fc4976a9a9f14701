package match

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestFilterRatio(t *testing.T) {
	tests := []struct {
		name string
		knn  [][]gocv.DMatch
		want int
	}{
		{
			name: "clearly discriminative match accepted",
			knn: [][]gocv.DMatch{
				{{QueryIdx: 0, TrainIdx: 3, Distance: 10}, {QueryIdx: 0, TrainIdx: 7, Distance: 100}},
			},
			want: 1,
		},
		{
			name: "just under the threshold accepted",
			knn: [][]gocv.DMatch{
				{{QueryIdx: 0, TrainIdx: 1, Distance: 69}, {QueryIdx: 0, TrainIdx: 2, Distance: 100}},
			},
			want: 1,
		},
		{
			name: "just over the threshold rejected",
			knn: [][]gocv.DMatch{
				{{QueryIdx: 0, TrainIdx: 1, Distance: 71}, {QueryIdx: 0, TrainIdx: 2, Distance: 100}},
			},
			want: 0,
		},
		{
			name: "exactly at the threshold rejected",
			knn: [][]gocv.DMatch{
				{{QueryIdx: 0, TrainIdx: 1, Distance: 70}, {QueryIdx: 0, TrainIdx: 2, Distance: 100}},
			},
			want: 0,
		},
		{
			name: "single neighbor skipped",
			knn: [][]gocv.DMatch{
				{{QueryIdx: 0, TrainIdx: 1, Distance: 1}},
			},
			want: 0,
		},
		{
			name: "no neighbors skipped",
			knn:  [][]gocv.DMatch{{}},
			want: 0,
		},
		{
			name: "empty input",
			knn:  nil,
			want: 0,
		},
		{
			name: "mixed input keeps only unambiguous matches",
			knn: [][]gocv.DMatch{
				{{QueryIdx: 0, TrainIdx: 5, Distance: 10}, {QueryIdx: 0, TrainIdx: 6, Distance: 90}},
				{{QueryIdx: 1, TrainIdx: 5, Distance: 80}, {QueryIdx: 1, TrainIdx: 6, Distance: 90}},
				{{QueryIdx: 2, TrainIdx: 5, Distance: 20}, {QueryIdx: 2, TrainIdx: 6, Distance: 95}},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRatio(tt.knn, DefaultRatio)
			if len(got) != tt.want {
				t.Errorf("FilterRatio() kept %d correspondences, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFilterRatio_NoTrainSideDedup(t *testing.T) {
	// Two query descriptors matching the same reference keypoint both
	// survive; deduplication is left to the homography's outlier handling.
	knn := [][]gocv.DMatch{
		{{QueryIdx: 0, TrainIdx: 4, Distance: 10}, {QueryIdx: 0, TrainIdx: 9, Distance: 100}},
		{{QueryIdx: 1, TrainIdx: 4, Distance: 12}, {QueryIdx: 1, TrainIdx: 9, Distance: 100}},
	}

	got := FilterRatio(knn, DefaultRatio)
	if len(got) != 2 {
		t.Fatalf("FilterRatio() kept %d correspondences, want 2", len(got))
	}
	if got[0].TrainIdx != 4 || got[1].TrainIdx != 4 {
		t.Errorf("both correspondences should keep TrainIdx 4, got %d and %d", got[0].TrainIdx, got[1].TrainIdx)
	}
}

func TestFilterRatio_PreservesQueryOrder(t *testing.T) {
	knn := [][]gocv.DMatch{
		{{QueryIdx: 2, TrainIdx: 0, Distance: 1}, {QueryIdx: 2, TrainIdx: 1, Distance: 100}},
		{{QueryIdx: 5, TrainIdx: 0, Distance: 1}, {QueryIdx: 5, TrainIdx: 1, Distance: 100}},
		{{QueryIdx: 7, TrainIdx: 0, Distance: 1}, {QueryIdx: 7, TrainIdx: 1, Distance: 100}},
	}

	got := FilterRatio(knn, DefaultRatio)
	if len(got) != 3 {
		t.Fatalf("FilterRatio() kept %d correspondences, want 3", len(got))
	}
	for i, wantIdx := range []int{2, 5, 7} {
		if got[i].QueryIdx != wantIdx {
			t.Errorf("got[%d].QueryIdx = %d, want %d", i, got[i].QueryIdx, wantIdx)
		}
	}
}

func TestNew_UnknownMode(t *testing.T) {
	if _, err := New(Mode("ANN")); err == nil {
		t.Error("New with unknown matcher mode should return an error")
	}
}

func TestMatcher_EmptyDescriptors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	m, err := New(ModeBruteForce)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	filled := gocv.NewMatWithSize(5, 32, gocv.MatTypeCV32F)
	defer filled.Close()

	tests := []struct {
		name        string
		query, refs gocv.Mat
	}{
		{"empty query", empty, filled},
		{"empty reference", filled, empty},
		{"both empty", empty, empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.query, tt.refs); len(got) != 0 {
				t.Errorf("Match() = %d correspondences, want 0", len(got))
			}
		})
	}
}
