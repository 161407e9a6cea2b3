package math

import (
	"testing"
)

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Project(t *testing.T) {
	tests := []struct {
		name string
		p    Vec2
		want float32
	}{
		{"start", Vec2{0, 0}, 0},
		{"middle", Vec2{5, 3}, 0.5},
		{"end", Vec2{10, -2}, 1},
		{"beyond", Vec2{15, 0}, 1.5},
		{"before", Vec2{-5, 0}, -0.5},
	}

	start, end := Vec2{0, 0}, Vec2{10, 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := start.Project(end, tt.p)
			if !ok {
				t.Fatal("expected non-degenerate segment")
			}
			if got != tt.want {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := start.Project(start, Vec2{1, 1}); ok {
		t.Error("expected degenerate segment to report !ok")
	}
}

func TestVec3Mul(t *testing.T) {
	got := Vec3{1, 2, 3}.Mul(Vec3{2, 0.5, -1})
	want := Vec3{2, 1, -3}
	if got != want {
		t.Errorf("Vec3.Mul() = %v, want %v", got, want)
	}
}

func TestVec3ClampMin(t *testing.T) {
	got := Vec3{0, -0.0001, 2}.ClampMin(0.001)
	want := Vec3{0.001, -0.001, 2}
	if got != want {
		t.Errorf("Vec3.ClampMin() = %v, want %v", got, want)
	}
}

func TestLerpClamp(t *testing.T) {
	if got := Lerp(2, 4, 0.5); got != 3 {
		t.Errorf("Lerp(2, 4, 0.5) = %v, want 3", got)
	}
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp(5, 0, 1) = %v, want 1", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Errorf("Clamp(-5, 0, 1) = %v, want 0", got)
	}
}
