package processor_test

import (
	"fmt"

	"github.com/linuxmatters/colimiter/internal/processor"
)

func ExampleColimiter_Process() {
	// -13.98 dB is a linear threshold of 0.2.
	inst := processor.NewInstance(-13.979400)
	inst.Meter.Open()

	c, err := inst.NewColimiter(48000)
	if err != nil {
		panic(err)
	}

	block := [][]float32{{0.5, -0.3, 0.05}}
	c.Process(block)

	fmt.Printf("%.3f %.3f %.3f\n", block[0][0], block[0][1], block[0][2])
	fmt.Printf("peak %.2f dB\n", inst.Meter.ReadDB())
	// Output:
	// 0.300 -0.100 0.000
	// peak -6.02 dB
}
