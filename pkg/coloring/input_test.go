package coloring

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTap(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy float64
		dt     time.Duration
		want   bool
	}{
		{"small quick touch", 5, 3, 150 * time.Millisecond, true},
		{"horizontal drag", 50, 0, 100 * time.Millisecond, false},
		{"vertical scroll", 0, -40, 80 * time.Millisecond, false},
		{"long press", 1, 1, 400 * time.Millisecond, false},
		{"move at threshold", 10, 0, 50 * time.Millisecond, false},
		{"duration at threshold", 0, 0, 300 * time.Millisecond, false},
		{"negative deltas", -9, -9, 10 * time.Millisecond, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTap(tc.dx, tc.dy, tc.dt, DefaultTapMaxMove, DefaultTapMaxDuration))
		})
	}
}

func TestTapDetector(t *testing.T) {
	d := NewTapDetector()
	t0 := time.Unix(1700000000, 0)

	assert.False(t, d.TouchEnd(5, 5, t0), "end without start")

	d.TouchStart(100, 100, t0)
	assert.True(t, d.Pending())
	assert.True(t, d.TouchEnd(105, 103, t0.Add(150*time.Millisecond)))
	assert.False(t, d.Pending())

	d.TouchStart(100, 100, t0)
	assert.False(t, d.TouchEnd(150, 100, t0.Add(100*time.Millisecond)))
	assert.False(t, d.Pending(), "state clears after a drag too")
	assert.False(t, d.TouchEnd(150, 100, t0.Add(120*time.Millisecond)))
}

func TestToCanvasCoords(t *testing.T) {
	rect := ElementRect{Left: 100, Top: 50, Width: 200, Height: 100}

	p, ok := ToCanvasCoords(150, 75, rect, 400, 200)
	assert.True(t, ok)
	assert.Equal(t, image.Point{X: 100, Y: 50}, p)

	p, ok = ToCanvasCoords(100, 50, rect, 400, 200)
	assert.True(t, ok)
	assert.Equal(t, image.Point{}, p)

	p, ok = ToCanvasCoords(299.9, 149.9, rect, 400, 200)
	assert.True(t, ok)
	assert.Equal(t, image.Point{X: 399, Y: 199}, p)

	_, ok = ToCanvasCoords(300, 75, rect, 400, 200)
	assert.False(t, ok)
	_, ok = ToCanvasCoords(99, 75, rect, 400, 200)
	assert.False(t, ok)
	_, ok = ToCanvasCoords(150, 75, ElementRect{}, 400, 200)
	assert.False(t, ok)
}
