package problems

import (
	"math"
	"testing"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
)

// checkGradient compares an analytic gradient against central finite
// differences at the given point.
func checkGradient(t *testing.T, op any, at []float64) {
	t.Helper()

	cf := op.(opt.CostFunction)
	gf := op.(opt.GradientFunction)

	x := linalg.NewDense(at)
	grad, err := gf.Gradient(x)
	if err != nil {
		t.Fatalf("Gradient failed: %v", err)
	}

	const h = 1e-6
	for i := range at {
		hi := make([]float64, len(at))
		lo := make([]float64, len(at))
		copy(hi, at)
		copy(lo, at)
		hi[i] += h
		lo[i] -= h

		fhi, _ := cf.Cost(linalg.NewDense(hi))
		flo, _ := cf.Cost(linalg.NewDense(lo))
		numeric := (fhi - flo) / (2 * h)

		if math.Abs(grad.At(i)-numeric) > 1e-3*(1+math.Abs(numeric)) {
			t.Errorf("grad[%d] = %f, finite difference = %f", i, grad.At(i), numeric)
		}
	}
}

func TestRosenbrockGradient(t *testing.T) {
	checkGradient(t, NewRosenbrock(), []float64{-1.2, 1.0})
	checkGradient(t, NewRosenbrock(), []float64{0.5, 2.0})
}

func TestRosenbrockMinimum(t *testing.T) {
	r := NewRosenbrock()
	cost, err := r.Cost(r.Minimizer())
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if cost != 0 {
		t.Errorf("cost at minimizer = %g, want 0", cost)
	}

	grad, err := r.Gradient(r.Minimizer())
	if err != nil {
		t.Fatalf("Gradient failed: %v", err)
	}
	if grad.Norm() > 1e-12 {
		t.Errorf("gradient norm at minimizer = %g, want 0", grad.Norm())
	}
}

func TestSphereGradientAndHessian(t *testing.T) {
	checkGradient(t, Sphere{}, []float64{1, -2, 3})

	h, err := Sphere{}.Hessian(linalg.NewDense([]float64{1, 1}))
	if err != nil {
		t.Fatalf("Hessian failed: %v", err)
	}
	v := linalg.NewDense([]float64{3, -1})
	out := h.Apply(v)
	if out.At(0) != 6 || out.At(1) != -2 {
		t.Errorf("Hessian apply = (%f, %f), want (6, -2)", out.At(0), out.At(1))
	}
}

func TestQuadraticGradient(t *testing.T) {
	checkGradient(t, NewQuadratic(), []float64{3, 3})
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		op, err := Get(name)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", name, err)
			continue
		}
		if _, ok := op.(opt.CostFunction); !ok {
			t.Errorf("problem %s does not implement the cost capability", name)
		}
	}

	if _, err := Get("nope"); err == nil {
		t.Error("Get should fail for an unknown problem")
	}
}
