package segment

import "sort"

// findBoundNotAfter returns the rightmost index whose bound is <= v, or -1.
func findBoundNotAfter[S any](data []S, v float64, c boundCmp[S]) int {
	return sort.Search(len(data), func(i int) bool { return c(data[i], v) > 0 }) - 1
}

// findBoundBefore returns the rightmost index whose bound is < v, or -1.
func findBoundBefore[S any](data []S, v float64, c boundCmp[S]) int {
	return sort.Search(len(data), func(i int) bool { return c(data[i], v) >= 0 }) - 1
}

// findBoundNotBefore returns the leftmost index whose bound is >= v, or len(data).
func findBoundNotBefore[S any](data []S, v float64, c boundCmp[S]) int {
	return sort.Search(len(data), func(i int) bool { return c(data[i], v) >= 0 })
}

// findBoundAfter returns the leftmost index whose bound is > v, or len(data).
func findBoundAfter[S any](data []S, v float64, c boundCmp[S]) int {
	return sort.Search(len(data), func(i int) bool { return c(data[i], v) > 0 })
}
