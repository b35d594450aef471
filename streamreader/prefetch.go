package streamreader

import "context"

// BufferNextStructuresAsync ensures at least k complete top-level
// structures are contiguously resident in r's shared buffer before
// returning (spec §4.2). It works by peek-skipping structures one at a
// time against a scratch cursor, growing the buffer whenever a skip
// reports InsufficientBuffer, without disturbing r's own decode
// position.
func BufferNextStructuresAsync(ctx context.Context, r *ResumableReader, k int) error {
	scratch := r.CreatePeekReader()
	for i := 0; i < k; i++ {
		state := &SkipState{stack: []skipFrame{{remaining: 1}}}
		for {
			status, err := scratch.Skip(state)
			if err != nil {
				return err
			}
			if status == Success {
				break
			}
			if status == EmptyBuffer || status == InsufficientBuffer {
				if err := scratch.FetchMoreAsync(ctx); err != nil {
					return err
				}
				continue
			}
			return nil
		}
	}
	return nil
}
