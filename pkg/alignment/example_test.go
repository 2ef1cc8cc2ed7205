package alignment_test

import (
	"fmt"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/geometry"
)

func ExampleController() {
	c := alignment.New(geometry.DefaultTolerance)

	c.Start()
	fmt.Println(c.StatusMessage())

	c.ClickBase(geometry.Pt(0.2, 0.2))
	c.ClickBase(geometry.Pt(0.8, 0.2))
	c.ClickCandidate(geometry.Pt(0.1, 0.3))
	state := c.ClickCandidate(geometry.Pt(0.4, 0.3))

	fmt.Println(state)
	fmt.Printf("scale %.1f\n", c.Transform().Scale)

	c.Rescale(+10) // clamped
	fmt.Printf("scale %.1f\n", c.Transform().Scale)
	// Output:
	// Click point A on the BASE drawing (blue layer)
	// aligned
	// scale 2.0
	// scale 2.0
}
