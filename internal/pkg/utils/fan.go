package utils

// FanOut copies every value of input into n output channels. Outputs share the capacity
// of the input (at least 1) and get closed after the input is closed.
// A slow consumer holds back the others, every output has to be drained.
func FanOut[T any](input <-chan T, n int) []<-chan T {
	size := cap(input)
	if size == 0 {
		size = 1
	}

	var outputs = make([]chan T, n)
	var readOnly = make([]<-chan T, n)
	for i := range outputs {
		outputs[i] = make(chan T, size)
		readOnly[i] = outputs[i]
	}

	go func() {
		for v := range input {
			for _, o := range outputs {
				o <- v
			}
		}
		for _, o := range outputs {
			close(o)
		}
	}()
	return readOnly
}

// Drain consumes channel in the background until it gets closed.
func Drain[T any](c <-chan T) {
	go func() {
		for range c {
		}
	}()
}
