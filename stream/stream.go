package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// Slice, et al., taken from:
// https://betterprogramming.pub/writing-a-stream-api-in-go-afbc3c4350e2

func Slice[T any](ctx context.Context, in []T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for _, element := range in {
			select {
			case <-ctx.Done():
				return
			case out <- element:
			}
		}
	}()
	return out
}

// NDJSON decodes newline-delimited JSON values from the reader.
// Values that fail to decode are skipped and counted; the count is sent
// on the second channel once the output channel is closed.
// A syntax error ends the stream, since the decoder cannot resync.
func NDJSON[T any](ctx context.Context, in io.Reader) (<-chan T, <-chan int) {
	out := make(chan T)
	skipped := make(chan int, 1)
	go func() {
		defer close(out)
		n := 0
		defer func() {
			skipped <- n
			close(skipped)
		}()
		dec := json.NewDecoder(in)
		for {
			var element T
			if err := dec.Decode(&element); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				var syntaxErr *json.SyntaxError
				if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
					n++
					return
				}
				n++
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- element:
			}
		}
	}()
	return out, skipped
}

func Transform[I any, O any](ctx context.Context, transformer func(I) O, in <-chan I) <-chan O {
	out := make(chan O)
	go func() {
		defer close(out)
		for element := range in {
			select {
			case <-ctx.Done():
				return
			case out <- transformer(element):
			}
		}
	}()
	return out
}

func Collect[T any](ctx context.Context, in <-chan T) []T {
	out := make([]T, 0)
	for element := range in {
		select {
		case <-ctx.Done():
			return out
		default:
			out = append(out, element)
		}
	}
	return out
}

// OrderedMap applies fn to every element of in using n workers
// and returns the results in input order.
// Elements not reached before ctx is done are left as zero values,
// and ctx.Err() is returned.
func OrderedMap[I any, O any](ctx context.Context, n int, in []I, fn func(int, I) O) ([]O, error) {
	if n < 1 {
		n = 1
	}
	out := make([]O, len(in))
	work := make(chan int)
	wg := sync.WaitGroup{}
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				out[i] = fn(i, in[i])
			}
		}()
	}
	var err error
feed:
	for i := range in {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()
	return out, err
}
