package processor_test

import (
	"fmt"

	"github.com/cwbudde/algo-comp/dsp/buffer"
	"github.com/cwbudde/algo-comp/dsp/processor"
)

func ExampleProcessor() {
	proc := processor.New()
	if err := proc.Prepare(48000, 4, 2, 2); err != nil {
		panic(err)
	}

	block := buffer.NewBlock(2, 4)
	proc.ProcessBlock(block, 2)

	fmt.Println(block.Channel(0), block.Channel(1))

	// Output:
	// [0 0 0 0] [0 0 0 0]
}
