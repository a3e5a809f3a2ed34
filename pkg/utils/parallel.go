package utils

import "sync"

// ParallelMap 以最多 workers 个协程并发执行 fn，结果顺序与 inputs 一致。
// 单个输入或 workers <= 1 时直接串行执行。
func ParallelMap[T any, R any](inputs []T, workers int, fn func(T) R) []R {
	results := make([]R, len(inputs))
	if len(inputs) == 0 {
		return results
	}
	if len(inputs) == 1 || workers <= 1 {
		for i, in := range inputs {
			results[i] = fn(in)
		}
		return results
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexCh {
				results[i] = fn(inputs[i])
			}
		}()
	}
	for i := range inputs {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()
	return results
}

// Chunk 按 size 切分，最后一段可能不足 size
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
