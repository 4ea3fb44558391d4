package tail_test

import (
	"fmt"

	"github.com/cwbudde/algo-dattorro/measure/tail"
)

func ExampleWindowRMS() {
	x := []float64{1, -1, 1, -1, 0.5, 0.5}

	rms, err := tail.WindowRMS(x, 2)
	if err != nil {
		panic(err)
	}
	fmt.Println(rms)

	// Output:
	// [1 1 0.5]
}

func ExampleCorrelation() {
	l := []float64{1, 0, -1, 0}
	r := []float64{-1, 0, 1, 0}

	c, err := tail.Correlation(l, r)
	if err != nil {
		panic(err)
	}
	fmt.Println(c)

	// Output:
	// -1
}
