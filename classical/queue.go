/******************************************************************************************[Heap.h]
Copyright (c) 2003-2006, Niklas Een, Niklas Sorensson
Copyright (c) 2007-2010, Niklas Sorensson

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and
associated documentation files (the "Software"), to deal in the Software without restriction,
including without limitation the rights to use, copy, modify, merge, publish, distribute,
sublicense, and/or sell copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or
substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT
NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT
OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
**************************************************************************************************/

package classical

// A heap of variables ordered by decreasing flip gain, with support for key updates.
// This is strongly inspired from Minisat's mtl/Heap.h. Every variable is always in the heap.

type queue struct {
	gain []float64 // Energy decrease obtained by flipping each variable. This is the descender's slice, not a copy.
	heap []int     // Variables, best first.
	pos  []int     // pos[v] is the position of v in heap.
}

func newQueue(gain []float64) queue {
	q := queue{
		gain: gain,
		heap: make([]int, len(gain)),
		pos:  make([]int, len(gain)),
	}
	for v := range q.heap {
		q.heap[v] = v
		q.pos[v] = v
	}
	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.sink(i)
	}
	return q
}

// before is true iff v must be flipped before w: higher gains first, then lower indices.
func (q *queue) before(v, w int) bool {
	return q.gain[v] > q.gain[w] || (q.gain[v] == q.gain[w] && v < w)
}

func (q *queue) place(v, i int) {
	q.heap[i] = v
	q.pos[v] = i
}

func (q *queue) swim(i int) {
	v := q.heap[i]
	for i > 0 {
		up := (i - 1) / 2
		if !q.before(v, q.heap[up]) {
			break
		}
		q.place(q.heap[up], i)
		i = up
	}
	q.place(v, i)
}

func (q *queue) sink(i int) {
	v := q.heap[i]
	n := len(q.heap)
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if child+1 < n && q.before(q.heap[child+1], q.heap[child]) {
			child++
		}
		if !q.before(q.heap[child], v) {
			break
		}
		q.place(q.heap[child], i)
		i = child
	}
	q.place(v, i)
}

func (q *queue) empty() bool { return len(q.heap) == 0 }

// top returns the variable with the highest gain, without removing it.
func (q *queue) top() int {
	return q.heap[0]
}

// update restores the heap property after the gain of v changed.
func (q *queue) update(v int) {
	q.swim(q.pos[v])
	q.sink(q.pos[v])
}
