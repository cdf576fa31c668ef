package allocation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMatrix is returned for cost matrices the solver cannot handle
var ErrInvalidMatrix = errors.New("invalid cost matrix")

// MinCostAssignment solves the rectangular assignment problem for a cost
// matrix with rows <= cols. It returns the column assigned to every row and
// the total cost of the assignment.
//
// The implementation is the classic O(n^2 m) Hungarian algorithm with row and
// column potentials. Ties are broken towards the lowest column index, so the
// result is stable for identical input.
func MinCostAssignment(cost [][]float64) ([]int, float64, error) {
	n := len(cost)
	if n == 0 {
		return []int{}, 0, nil
	}
	m := len(cost[0])
	if n > m {
		return nil, 0, fmt.Errorf("%w: %d rows exceed %d columns", ErrInvalidMatrix, n, m)
	}
	for i, row := range cost {
		if len(row) != m {
			return nil, 0, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidMatrix, i, len(row), m)
		}
		for _, c := range row {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, 0, fmt.Errorf("%w: row %d contains a non-finite cost", ErrInvalidMatrix, i)
			}
		}
	}

	// 1-indexed; column 0 and row 0 are sentinels
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)
	minv := make([]float64, m+1)
	used := make([]bool, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0

			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// Augment along the alternating path
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] != 0 {
			assignment[p[j]-1] = j - 1
		}
	}

	total := 0.0
	for i, j := range assignment {
		total += cost[i][j]
	}

	return assignment, total, nil
}
