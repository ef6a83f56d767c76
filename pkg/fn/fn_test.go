package fn

import (
	"context"
	"errors"
	"testing"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.IsErr() {
		t.Error("Ok should be ok")
	}
	if v, err := ok.Unwrap(); v != 42 || err != nil {
		t.Errorf("Unwrap = (%v, %v)", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Error("Err should not be ok")
	}
	if v := e.UnwrapOr(7); v != 7 {
		t.Errorf("UnwrapOr = %v", v)
	}

	if r := FromPair(1, nil); !r.IsOk() {
		t.Error("FromPair with nil error should be ok")
	}
	if r := FromPair(0, errors.New("x")); !r.IsErr() {
		t.Error("FromPair with error should be err")
	}
}

func TestCollect(t *testing.T) {
	all := Collect([]Result[int]{Ok(1), Ok(2)})
	vals, err := all.Unwrap()
	if err != nil || len(vals) != 2 {
		t.Fatalf("Collect = (%v, %v)", vals, err)
	}

	mixed := Collect([]Result[int]{Ok(1), Errf[int]("bad %d", 2)})
	if !mixed.IsErr() {
		t.Fatal("Collect with an error should fail")
	}
}

func TestThen(t *testing.T) {
	double := MapStage(func(n int) int { return n * 2 })
	fail := Stage[int, int](func(_ context.Context, _ int) Result[int] {
		return Err[int](errors.New("stop"))
	})

	if v, err := Then(double, double)(context.Background(), 3).Unwrap(); v != 12 || err != nil {
		t.Errorf("Then = (%v, %v)", v, err)
	}

	called := false
	spy := TapStage(func(_ context.Context, _ int) { called = true })
	if r := Then(fail, spy)(context.Background(), 3); !r.IsErr() {
		t.Error("Then should short-circuit on error")
	}
	if called {
		t.Error("second stage must not run after a failure")
	}
}

func TestParMapResult(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	results := ParMapResult(items, 2, func(n int) Result[int] {
		if n == 3 {
			return Errf[int]("reject %d", n)
		}
		return Ok(n * 10)
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if i == 2 {
			if !r.IsErr() {
				t.Error("item 3 should fail")
			}
			continue
		}
		if v, _ := r.Unwrap(); v != items[i]*10 {
			t.Errorf("result[%d] = %v", i, v)
		}
	}
}

func TestParMapResult_Empty(t *testing.T) {
	if results := ParMapResult(nil, 4, func(int) Result[int] { return Ok(0) }); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
