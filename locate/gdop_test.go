package locate

import "testing"

func TestGDOPWeightFewAnchors(t *testing.T) {
	anchors := []Point{{0, 0}, {10, 0}}
	if w := gdopWeight(anchors, Point{5, 5}); w != GDOPFallback {
		t.Errorf("expected fallback weight %v for 2 anchors, got %v", GDOPFallback, w)
	}
	if w := gdopWeight(nil, Point{}); w != GDOPFallback {
		t.Errorf("expected fallback weight %v for no anchors, got %v", GDOPFallback, w)
	}
}

func TestGDOPWeightBounds(t *testing.T) {
	layouts := [][]Point{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		{{0, 0}, {1, 0}, {2, 0.001}, {3, 0.002}},
		{{0, 0}, {0.01, 0}, {0.02, 0}},
		{{-100, -100}, {100, -100}, {100, 100}, {-100, 100}, {0, 0}},
	}
	for _, anchors := range layouts {
		w := gdopWeight(anchors, Point{1, 1})
		if w < GDOPFloor || w > GDOPCeil {
			t.Errorf("weight %v outside [%v,%v] for layout %v", w, GDOPFloor, GDOPCeil, anchors)
		}
	}
}

func TestGDOPWeightMonotonicity(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	nearCollinear := []Point{{0, 0}, {5, 0.1}, {10, 0.05}, {15, 0.12}}
	target := Point{5, 5}

	ws := gdopWeight(square, target)
	wc := gdopWeight(nearCollinear, target)
	if ws < wc {
		t.Errorf("square layout weight %v < near-collinear weight %v", ws, wc)
	}
}

func TestGDOPWeightCollinearFallsBack(t *testing.T) {
	collinear := []Point{{0, 0}, {5, 0}, {10, 0}}
	w := gdopWeight(collinear, Point{5, 5})
	if w < GDOPFloor || w > GDOPCeil {
		t.Errorf("collinear weight %v outside bounds", w)
	}
}
